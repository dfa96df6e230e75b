package chatRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"enrolla/models"
)

// Upsert creates or refreshes the chat keyed by (wa_id, organization_id).
func (r *mongoChatRepo) Upsert(ctx context.Context, orgID, waID, name, phoneNumber string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	filter := bson.M{"wa_id": waID, "organization_id": orgID}
	update := bson.M{
		"$set": bson.M{
			"name":         name,
			"phone_number": phoneNumber,
			"updated_at":   now,
		},
		"$setOnInsert": bson.M{
			"id":              uuid.New().String(),
			"wa_id":           waID,
			"organization_id": orgID,
			"created_at":      now,
		},
	}

	_, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert chat: %w", err)
	}
	return nil
}

func (r *mongoChatRepo) findOne(ctx context.Context, filter bson.M) (*models.Chat, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var chat models.Chat
	err := r.coll.FindOne(ctx, filter).Decode(&chat)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chat: %w", err)
	}
	return &chat, nil
}

func (r *mongoChatRepo) GetByID(ctx context.Context, id string) (*models.Chat, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *mongoChatRepo) GetByWaID(ctx context.Context, orgID, waID string) (*models.Chat, error) {
	return r.findOne(ctx, bson.M{"wa_id": waID, "organization_id": orgID})
}

// SetActiveSession repoints the chat's active session and clears the stale
// last-session-closed marker.
func (r *mongoChatRepo) SetActiveSession(ctx context.Context, chatID, sessionID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"active_session_id": sessionID,
			"updated_at":        time.Now().UTC(),
		},
		"$unset": bson.M{"last_session_closed_at": ""},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": chatID}, update)
	if err != nil {
		return fmt.Errorf("failed to set active session: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoChatRepo) UpdateState(ctx context.Context, chatID string, state map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"state":      state,
		"updated_at": time.Now().UTC(),
	}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"id": chatID}, update)
	if err != nil {
		return fmt.Errorf("failed to update chat state: %w", err)
	}
	return nil
}
