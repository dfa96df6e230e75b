package orgRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"enrolla/models"
)

func (r *mongoOrganizationRepo) findOne(ctx context.Context, filter bson.M) (*models.Organization, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var org models.Organization
	err := r.coll.FindOne(ctx, filter).Decode(&org)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch organization: %w", err)
	}
	return &org, nil
}

func (r *mongoOrganizationRepo) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *mongoOrganizationRepo) GetByPhoneNumberID(ctx context.Context, phoneNumberID string) (*models.Organization, error) {
	return r.findOne(ctx, bson.M{"phone_number_id": phoneNumberID})
}

func (r *mongoOrganizationRepo) GetByWABAID(ctx context.Context, wabaID string) (*models.Organization, error) {
	return r.findOne(ctx, bson.M{"whatsapp_business_account_id": wabaID})
}
