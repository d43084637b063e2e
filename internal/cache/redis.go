package cache

import (
	"context"
	"encoding/json"
	"time"

	"sentiment-analyzer/backend/internal/nlu"
	"sentiment-analyzer/backend/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RedisCache is the shared annotation cache used when a Redis address
// is configured. Backend failures degrade to cache misses.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewRedisCache(addr string, ttl time.Duration, log *logger.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // no password by default
		DB:       0,  // use default DB
	})

	return &RedisCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func (c *RedisCache) Get(ctx context.Context, text string) (*nlu.Annotation, bool) {
	data, err := c.client.Get(ctx, Key(text)).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("Annotation cache read failed", "error", err.Error())
		}
		return nil, false
	}

	var annotation nlu.Annotation
	if err := json.Unmarshal([]byte(data), &annotation); err != nil {
		c.log.Warn("Annotation cache entry is corrupt, ignoring", "error", err.Error())
		return nil, false
	}

	return &annotation, true
}

func (c *RedisCache) Set(ctx context.Context, text string, annotation *nlu.Annotation) {
	data, err := json.Marshal(annotation)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, Key(text), data, c.ttl).Err(); err != nil {
		c.log.Warn("Annotation cache write failed", "error", err.Error())
	}
}

// Ping verifies the Redis connection at startup
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
