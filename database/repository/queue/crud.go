package queueRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"enrolla/models"
)

// Accumulate appends the text to the chat's pending buffer and restarts the
// debounce clock. Uses a pipeline update so concurrent webhook deliveries
// append instead of clobbering each other.
func (r *mongoQueueRepo) Accumulate(ctx context.Context, chatID, text string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	existing := bson.M{"$ifNull": bson.A{"$combined_text", ""}}
	separator := bson.M{"$cond": bson.A{
		bson.M{"$eq": bson.A{existing, ""}},
		"",
		" ",
	}}
	pipeline := bson.A{bson.M{"$set": bson.M{
		"chat_id":       chatID,
		"combined_text": bson.M{"$concat": bson.A{existing, separator, text}},
		"last_added_at": time.Now().UTC(),
		"is_processing": bson.M{"$ifNull": bson.A{"$is_processing", false}},
	}}}

	_, err := r.coll.UpdateOne(ctx, bson.M{"chat_id": chatID}, pipeline, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to accumulate message queue: %w", err)
	}
	return nil
}

func (r *mongoQueueRepo) Get(ctx context.Context, chatID string) (*models.MessageQueue, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var queue models.MessageQueue
	err := r.coll.FindOne(ctx, bson.M{"chat_id": chatID}).Decode(&queue)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message queue: %w", err)
	}
	return &queue, nil
}

// TryLock claims the queue row for processing. Returns false when another
// invocation already holds it or the row is gone.
func (r *mongoQueueRepo) TryLock(ctx context.Context, chatID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"chat_id": chatID, "is_processing": false}
	res := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": bson.M{"is_processing": true}})
	if res.Err() == mongo.ErrNoDocuments {
		return false, nil
	}
	if res.Err() != nil {
		return false, fmt.Errorf("failed to lock message queue: %w", res.Err())
	}
	return true, nil
}

// Unlock releases a claimed queue row without consuming it, so the buffered
// text survives for the next drain.
func (r *mongoQueueRepo) Unlock(ctx context.Context, chatID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx, bson.M{"chat_id": chatID}, bson.M{"$set": bson.M{"is_processing": false}})
	if err != nil {
		return fmt.Errorf("failed to unlock message queue: %w", err)
	}
	return nil
}

func (r *mongoQueueRepo) Delete(ctx context.Context, chatID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"chat_id": chatID}); err != nil {
		return fmt.Errorf("failed to delete message queue: %w", err)
	}
	return nil
}
