package leadRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"enrolla/models"
)

func (r *mongoLeadRepo) Insert(ctx context.Context, lead models.Lead) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}
	lead.UpdatedAt = now
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}

	if _, err := r.coll.InsertOne(ctx, lead); err != nil {
		return fmt.Errorf("failed to insert lead: %w", err)
	}
	return nil
}

func (r *mongoLeadRepo) findOne(ctx context.Context, filter bson.M) (*models.Lead, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var lead models.Lead
	err := r.coll.FindOne(ctx, filter).Decode(&lead)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lead: %w", err)
	}
	return &lead, nil
}

func (r *mongoLeadRepo) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *mongoLeadRepo) GetByChat(ctx context.Context, orgID, chatID string) (*models.Lead, error) {
	return r.findOne(ctx, bson.M{"organization_id": orgID, "chat_id": chatID})
}

// Update applies a partial $set. Callers are responsible for only including
// non-empty fields so existing data is never overwritten with blanks.
func (r *mongoLeadRepo) Update(ctx context.Context, id string, set map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	fields := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range set {
		fields[k] = v
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoLeadRepo) AppendNote(ctx context.Context, id, note string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$push": bson.M{"notes": note},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to append lead note: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
