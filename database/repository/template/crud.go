package templateRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"enrolla/models"
)

func (r *mongoTemplateRepo) GetByExternalID(ctx context.Context, orgID, externalID string) (*models.WhatsAppTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var tpl models.WhatsAppTemplate
	err := r.coll.FindOne(ctx, bson.M{"organization_id": orgID, "external_id": externalID}).Decode(&tpl)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch template: %w", err)
	}
	return &tpl, nil
}

func (r *mongoTemplateRepo) ListByName(ctx context.Context, orgID, name string) ([]models.WhatsAppTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"organization_id": orgID, "name": name})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch templates by name: %w", err)
	}
	defer cursor.Close(ctx)

	var templates []models.WhatsAppTemplate
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, fmt.Errorf("error decoding templates: %w", err)
	}
	return templates, nil
}

func (r *mongoTemplateRepo) Update(ctx context.Context, orgID, id string, set map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	fields := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range set {
		fields[k] = v
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id, "organization_id": orgID}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
