package utils

import (
	"context"
	"log"
	"time"

	"enrolla/config"

	"github.com/go-redis/redis/v8"
)

// StateCacheClient is the dedicated client for conversation scratchpad caching.
var StateCacheClient *redis.Client

// InitStateCache initializes the Redis client backing the per-chat scratchpad cache.
func InitStateCache() {
	StateCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisStateDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := StateCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (State Cache): %v", err)
	}
}

// GetStateCacheClient returns the scratchpad cache client.
func GetStateCacheClient() *redis.Client {
	if StateCacheClient == nil {
		InitStateCache()
	}
	return StateCacheClient
}
