package chatRepo

import (
	"context"

	"enrolla/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type ChatRepository interface {
	Upsert(ctx context.Context, orgID, waID, name, phoneNumber string) error
	GetByID(ctx context.Context, id string) (*models.Chat, error)
	GetByWaID(ctx context.Context, orgID, waID string) (*models.Chat, error)
	SetActiveSession(ctx context.Context, chatID, sessionID string) error
	UpdateState(ctx context.Context, chatID string, state map[string]any) error
}

type mongoChatRepo struct {
	coll *mongo.Collection
}

// NewMongoChatRepo constructs a new MongoDB ChatRepository.
func NewMongoChatRepo(db *mongo.Database) ChatRepository {
	return &mongoChatRepo{
		coll: db.Collection("chats"),
	}
}
