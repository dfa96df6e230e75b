package slotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"enrolla/models"
)

func (r *mongoSlotRepo) GetByID(ctx context.Context, id string) (*models.AvailabilitySlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var slot models.AvailabilitySlot
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&slot)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch availability slot: %w", err)
	}
	return &slot, nil
}

// ListAvailableInRange returns slots inside [from, to) with capacity
// remaining, ordered by start time.
func (r *mongoSlotRepo) ListAvailableInRange(ctx context.Context, orgID string, from, to time.Time, limit int) ([]models.AvailabilitySlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"organization_id": orgID,
		"start_time":      bson.M{"$gte": from, "$lt": to},
		"$expr":           bson.M{"$lt": bson.A{"$current_appointments", "$max_appointments"}},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch availability slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []models.AvailabilitySlot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("error decoding availability slots: %w", err)
	}
	return slots, nil
}

// ReserveCapacity atomically takes one unit of capacity. The capacity check
// lives in the update filter so two overlapping bookings cannot both take
// the last place.
func (r *mongoSlotRepo) ReserveCapacity(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":    id,
		"$expr": bson.M{"$lt": bson.A{"$current_appointments", "$max_appointments"}},
	}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"current_appointments": 1}})
	if err != nil {
		return fmt.Errorf("failed to reserve slot capacity: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrSlotFull
	}
	return nil
}

// ReleaseCapacity returns one unit of capacity, floored at zero.
func (r *mongoSlotRepo) ReleaseCapacity(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":                   id,
		"current_appointments": bson.M{"$gt": 0},
	}
	if _, err := r.coll.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"current_appointments": -1}}); err != nil {
		return fmt.Errorf("failed to release slot capacity: %w", err)
	}
	return nil
}
