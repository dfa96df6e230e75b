package slotRepo

import (
	"context"
	"errors"
	"time"

	"enrolla/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrSlotFull is returned when a reservation finds no capacity left.
var ErrSlotFull = errors.New("availability slot is at capacity")

type SlotRepository interface {
	GetByID(ctx context.Context, id string) (*models.AvailabilitySlot, error)
	ListAvailableInRange(ctx context.Context, orgID string, from, to time.Time, limit int) ([]models.AvailabilitySlot, error)
	ReserveCapacity(ctx context.Context, id string) error
	ReleaseCapacity(ctx context.Context, id string) error
}

type mongoSlotRepo struct {
	coll *mongo.Collection
}

// NewMongoSlotRepo constructs a new MongoDB SlotRepository.
func NewMongoSlotRepo(db *mongo.Database) SlotRepository {
	return &mongoSlotRepo{
		coll: db.Collection("availability_slots"),
	}
}
