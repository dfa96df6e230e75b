package sessionRepo

import (
	"context"
	"time"

	"enrolla/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type SessionRepository interface {
	Insert(ctx context.Context, session models.ChatSession) error
	GetByID(ctx context.Context, id string) (*models.ChatSession, error)
	GetLatestByChatID(ctx context.Context, chatID string) (*models.ChatSession, error)
	SetLastResponseAt(ctx context.Context, id string, at time.Time) error
	Close(ctx context.Context, id string, at time.Time) error
}

type mongoSessionRepo struct {
	coll *mongo.Collection
}

// NewMongoSessionRepo constructs a new MongoDB SessionRepository.
func NewMongoSessionRepo(db *mongo.Database) SessionRepository {
	return &mongoSessionRepo{
		coll: db.Collection("chat_sessions"),
	}
}
