package queueRepo

import (
	"context"

	"enrolla/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type QueueRepository interface {
	Accumulate(ctx context.Context, chatID, text string) error
	Get(ctx context.Context, chatID string) (*models.MessageQueue, error)
	TryLock(ctx context.Context, chatID string) (bool, error)
	Unlock(ctx context.Context, chatID string) error
	Delete(ctx context.Context, chatID string) error
}

type mongoQueueRepo struct {
	coll *mongo.Collection
}

// NewMongoQueueRepo constructs a new MongoDB QueueRepository.
func NewMongoQueueRepo(db *mongo.Database) QueueRepository {
	return &mongoQueueRepo{
		coll: db.Collection("message_queue"),
	}
}
