package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"enrolla/models"
)

func (r *mongoAppointmentRepo) Insert(ctx context.Context, appointment models.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if appointment.ID == "" {
		appointment.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if appointment.CreatedAt.IsZero() {
		appointment.CreatedAt = now
	}
	appointment.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, appointment); err != nil {
		return fmt.Errorf("failed to insert appointment: %w", err)
	}
	return nil
}

// GetLatestScheduledByLead returns the lead's most recent appointment that
// is still scheduled, or nil when there is none.
func (r *mongoAppointmentRepo) GetLatestScheduledByLead(ctx context.Context, leadID string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"lead_id": leadID, "status": models.AppointmentStatusScheduled}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var appointment models.Appointment
	err := r.coll.FindOne(ctx, filter, opts).Decode(&appointment)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scheduled appointment: %w", err)
	}
	return &appointment, nil
}

func (r *mongoAppointmentRepo) Cancel(ctx context.Context, id, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":        models.AppointmentStatusCancelled,
		"cancel_reason": reason,
		"updated_at":    time.Now().UTC(),
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to cancel appointment: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
