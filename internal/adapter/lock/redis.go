// internal/adapter/lock/redis.go

package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection configuration
type Config struct {
	Addr          string
	Password      string
	DB            int
	MaxRetries    int
	RetryInterval time.Duration
}

// NewClient connects to Redis, retrying the initial ping
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(cfg.RetryInterval)
		}
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
	}

	client.Close()
	return nil, fmt.Errorf("failed to connect to redis after %d attempts: %w", cfg.MaxRetries+1, lastErr)
}

// RedisLocker grants leases with SET NX PX
type RedisLocker struct {
	client redis.Cmdable
	owner  string
}

// NewRedisLocker creates a locker identified by a random owner token
func NewRedisLocker(client redis.Cmdable) *RedisLocker {
	return &RedisLocker{client: client, owner: uuid.New().String()}
}

// Acquire takes key for ttl if nobody holds it. The lease is never released
// early; it simply expires.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, key, l.owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("error acquiring lease %s: %w", key, err)
	}
	return ok, nil
}
