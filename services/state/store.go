package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	chatRepo "enrolla/database/repository/chat"
	"enrolla/models"

	"github.com/go-redis/redis/v8"
)

const chatStatePrefix = "chat:state:"

// Store is the per-chat scratchpad. Reads prefer the Redis cache and fall
// back to the durable copy on the chat document, so overlapping stateless
// invocations always see the last written state.
type Store interface {
	Get(ctx context.Context, chatID string) (*models.ChatState, error)
	Set(ctx context.Context, chatID string, state *models.ChatState) error
	Clear(ctx context.Context, chatID string) error
}

type RedisStore struct {
	client *redis.Client
	chats  chatRepo.ChatRepository
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, chats chatRepo.ChatRepository, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, chats: chats, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, chatID string) (*models.ChatState, error) {
	key := chatStatePrefix + chatID
	data, err := s.client.Get(ctx, key).Result()
	if err == nil {
		var state models.ChatState
		if err := json.Unmarshal([]byte(data), &state); err == nil {
			return &state, nil
		}
	} else if err != redis.Nil {
		return nil, fmt.Errorf("load chat state: %w", err)
	}

	// Cache miss: rebuild from the durable copy.
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("load chat state fallback: %w", err)
	}
	if chat == nil || chat.State == nil {
		return &models.ChatState{}, nil
	}

	raw, err := json.Marshal(chat.State)
	if err != nil {
		return &models.ChatState{}, nil
	}
	var state models.ChatState
	if err := json.Unmarshal(raw, &state); err != nil {
		return &models.ChatState{}, nil
	}
	return &state, nil
}

func (s *RedisStore) Set(ctx context.Context, chatID string, state *models.ChatState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode chat state: %w", err)
	}

	var durable map[string]any
	if err := json.Unmarshal(b, &durable); err != nil {
		return fmt.Errorf("encode chat state: %w", err)
	}
	if err := s.chats.UpdateState(ctx, chatID, durable); err != nil {
		return fmt.Errorf("persist chat state: %w", err)
	}

	key := chatStatePrefix + chatID
	if err := s.client.Set(ctx, key, b, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache chat state: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, chatID string) error {
	if err := s.chats.UpdateState(ctx, chatID, map[string]any{}); err != nil {
		return fmt.Errorf("clear chat state: %w", err)
	}
	return s.client.Del(ctx, chatStatePrefix+chatID).Err()
}
