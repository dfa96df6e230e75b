package messageRepo

import (
	"context"
	"time"

	"enrolla/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type MessageRepository interface {
	Insert(ctx context.Context, message models.Message) error
	ExistsByWaMessageID(ctx context.Context, waMessageID string) (bool, error)
	AttachOrphansToSession(ctx context.Context, chatID, sessionID string) error
	ListBySession(ctx context.Context, sessionID string) ([]models.Message, error)
	UpdateStatusByWaMessageID(ctx context.Context, waMessageID, status string, at time.Time, detail map[string]any) error
}

type mongoMessageRepo struct {
	coll *mongo.Collection
}

// NewMongoMessageRepo constructs a new MongoDB MessageRepository.
func NewMongoMessageRepo(db *mongo.Database) MessageRepository {
	return &mongoMessageRepo{
		coll: db.Collection("messages"),
	}
}
