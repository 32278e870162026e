// File: utils/cache.go
package utils

import (
	"carebook/config"
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

var (
	// DraftCacheClient holds open wizard drafts and their submit locks.
	DraftCacheClient *redis.Client
)

// InitDraftCache initializes the Redis client used for wizard drafts.
func InitDraftCache() {
	DraftCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDraftDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := DraftCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Drafts): %v", err)
	}
}

// GetDraftCacheClient returns the draft cache client.
func GetDraftCacheClient() *redis.Client {
	if DraftCacheClient == nil {
		InitDraftCache()
	}
	return DraftCacheClient
}
