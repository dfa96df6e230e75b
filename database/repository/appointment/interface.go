package appointmentRepo

import (
	"context"

	"enrolla/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type AppointmentRepository interface {
	Insert(ctx context.Context, appointment models.Appointment) error
	GetLatestScheduledByLead(ctx context.Context, leadID string) (*models.Appointment, error)
	Cancel(ctx context.Context, id, reason string) error
}

type mongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo constructs a new MongoDB AppointmentRepository.
func NewMongoAppointmentRepo(db *mongo.Database) AppointmentRepository {
	return &mongoAppointmentRepo{
		coll: db.Collection("appointments"),
	}
}
