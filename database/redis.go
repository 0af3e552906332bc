package database

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/cache/v8"
	"github.com/go-redis/redis/v8"
	"github.com/salmankavanur/aic-amal-backend/config"
)

var (
	redisClient *redis.Client
	redisCache  *cache.Cache
	redisOnce   sync.Once
	redisErr    error
)

// GetCache returns the shared redis-backed cache used for donor lookups.
// Nil when StartRedis failed; call sites treat a nil cache as "no caching".
func GetCache() *cache.Cache {
	return redisCache
}

func StartRedis() error {
	redisOnce.Do(func() {
		client := redis.NewClient(&redis.Options{
			Addr:     config.GetEnvDefault("REDIS_ADDR", "localhost:6379"),
			Password: config.GetEnv("REDIS_PASSWORD"),
		})

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			redisErr = err
			return
		}

		redisClient = client
		redisCache = cache.New(&cache.Options{
			Redis:      client,
			LocalCache: cache.NewTinyLFU(1000, time.Minute),
		})
	})
	return redisErr
}

func CloseRedis() {
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
