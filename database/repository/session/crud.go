package sessionRepo

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

func (r *mongoSessionRepo) Insert(ctx context.Context, session models.ChatSession) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to insert chat session: %w", err)
	}
	return nil
}

func (r *mongoSessionRepo) GetByID(ctx context.Context, id string) (*models.ChatSession, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var session models.ChatSession
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chat session: %w", err)
	}
	return &session, nil
}

// GetLatestByChatID returns the most recently created session for the chat.
func (r *mongoSessionRepo) GetLatestByChatID(ctx context.Context, chatID string) (*models.ChatSession, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var session models.ChatSession
	err := r.coll.FindOne(ctx, bson.M{"chat_id": chatID}, opts).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest chat session: %w", err)
	}
	return &session, nil
}

func (r *mongoSessionRepo) SetLastResponseAt(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"last_response_at": at,
		"updated_at":       time.Now().UTC(),
	}}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update); err != nil {
		return fmt.Errorf("failed to set last response watermark: %w", err)
	}
	return nil
}

func (r *mongoSessionRepo) Close(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":     models.SessionStatusClosed,
		"closed_at":  at,
		"updated_at": time.Now().UTC(),
	}}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update); err != nil {
		return fmt.Errorf("failed to close chat session: %w", err)
	}
	return nil
}
