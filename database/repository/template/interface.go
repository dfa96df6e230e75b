package templateRepo

import (
	"context"

	"enrolla/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type TemplateRepository interface {
	GetByExternalID(ctx context.Context, orgID, externalID string) (*models.WhatsAppTemplate, error)
	ListByName(ctx context.Context, orgID, name string) ([]models.WhatsAppTemplate, error)
	Update(ctx context.Context, orgID, id string, set map[string]any) error
}

type mongoTemplateRepo struct {
	coll *mongo.Collection
}

// NewMongoTemplateRepo constructs a new MongoDB TemplateRepository.
func NewMongoTemplateRepo(db *mongo.Database) TemplateRepository {
	return &mongoTemplateRepo{
		coll: db.Collection("whatsapp_templates"),
	}
}
