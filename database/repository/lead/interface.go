package leadRepo

import (
	"context"

	"enrolla/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type LeadRepository interface {
	Insert(ctx context.Context, lead models.Lead) error
	GetByID(ctx context.Context, id string) (*models.Lead, error)
	GetByChat(ctx context.Context, orgID, chatID string) (*models.Lead, error)
	Update(ctx context.Context, id string, set map[string]any) error
	AppendNote(ctx context.Context, id, note string) error
}

type mongoLeadRepo struct {
	coll *mongo.Collection
}

// NewMongoLeadRepo constructs a new MongoDB LeadRepository.
func NewMongoLeadRepo(db *mongo.Database) LeadRepository {
	return &mongoLeadRepo{
		coll: db.Collection("leads"),
	}
}
