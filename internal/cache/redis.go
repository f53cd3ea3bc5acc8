package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SeakMengs/EventHub/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	urlKeyPrefix = "eventhub:url:"

	DefaultURLTTL = 50 * time.Minute
)

func ConnectRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.ADDR,
		Password: cfg.PASSWORD,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// URLCache keeps presigned urls. The ttl must stay below the presign expiry.
type URLCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func NewURLCache(client redis.Cmdable, ttl time.Duration, logger *zap.SugaredLogger) *URLCache {
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &URLCache{client: client, ttl: ttl, logger: logger}
}

func urlKey(bucket, key string) string {
	return urlKeyPrefix + bucket + "/" + key
}

// A redis failure counts as a miss.
func (c *URLCache) Get(ctx context.Context, bucket, key string) (string, bool) {
	url, err := c.client.Get(ctx, urlKey(bucket, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		c.logger.Warnf("url cache get %s/%s: %v", bucket, key, err)
		return "", false
	}
	return url, true
}

func (c *URLCache) Set(ctx context.Context, bucket, key, url string) {
	if err := c.client.Set(ctx, urlKey(bucket, key), url, c.ttl).Err(); err != nil {
		c.logger.Warnf("url cache set %s/%s: %v", bucket, key, err)
	}
}

func (c *URLCache) Invalidate(ctx context.Context, bucket, key string) {
	if err := c.client.Del(ctx, urlKey(bucket, key)).Err(); err != nil {
		c.logger.Warnf("url cache invalidate %s/%s: %v", bucket, key, err)
	}
}
