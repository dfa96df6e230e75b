package messageRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"enrolla/models"
)

func (r *mongoMessageRepo) Insert(ctx context.Context, message models.Message) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	if _, err := r.coll.InsertOne(ctx, message); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// ExistsByWaMessageID reports whether the channel message identifier was
// already persisted. Used for duplicate-delivery suppression.
func (r *mongoMessageRepo) ExistsByWaMessageID(ctx context.Context, waMessageID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, bson.M{"wa_message_id": waMessageID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate message: %w", err)
	}
	return count > 0, nil
}

// AttachOrphansToSession assigns every turn of the chat that has no session
// yet to the given session.
func (r *mongoMessageRepo) AttachOrphansToSession(ctx context.Context, chatID, sessionID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"chat_id": chatID,
		"$or": bson.A{
			bson.M{"chat_session_id": bson.M{"$exists": false}},
			bson.M{"chat_session_id": ""},
			bson.M{"chat_session_id": nil},
		},
	}
	update := bson.M{"$set": bson.M{"chat_session_id": sessionID}}
	if _, err := r.coll.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to attach orphan messages: %w", err)
	}
	return nil
}

func (r *mongoMessageRepo) ListBySession(ctx context.Context, sessionID string) ([]models.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"chat_session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("error decoding session messages: %w", err)
	}
	return messages, nil
}

// UpdateStatusByWaMessageID applies a delivery status update to an outbound
// turn. Only the delivery-status fields are mutable after insert.
func (r *mongoMessageRepo) UpdateStatusByWaMessageID(ctx context.Context, waMessageID, status string, at time.Time, detail map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{
		"status":                status,
		"payload.status_detail": detail,
	}
	switch status {
	case "sent":
		set["sent_at"] = at
	case "delivered":
		set["delivered_at"] = at
	case "read":
		set["read_at"] = at
	}

	_, err := r.coll.UpdateOne(ctx, bson.M{"wa_message_id": waMessageID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update message status: %w", err)
	}
	return nil
}
