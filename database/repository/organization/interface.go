package orgRepo

import (
	"context"

	"enrolla/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type OrganizationRepository interface {
	GetByID(ctx context.Context, id string) (*models.Organization, error)
	GetByPhoneNumberID(ctx context.Context, phoneNumberID string) (*models.Organization, error)
	GetByWABAID(ctx context.Context, wabaID string) (*models.Organization, error)
}

type mongoOrganizationRepo struct {
	coll *mongo.Collection
}

// NewMongoOrganizationRepo constructs a new MongoDB OrganizationRepository.
func NewMongoOrganizationRepo(db *mongo.Database) OrganizationRepository {
	return &mongoOrganizationRepo{
		coll: db.Collection("organizations"),
	}
}
