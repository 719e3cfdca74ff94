package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/learner-portal/repository"
)

type responseCache struct {
	client *redislib.Client
	prefix string
}

// NewResponseCache creates a Redis-backed response cache. Entries are shared by
// every replica of the service and expire through Redis TTLs.
func NewResponseCache(client *redislib.Client, prefix string) repository.ResponseCache {
	if prefix == "" {
		prefix = "learner-portal:api:"
	}
	return &responseCache{
		client: client,
		prefix: prefix,
	}
}

func (r *responseCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	body, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return body, true, nil
}

func (r *responseCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, r.key(key), body, ttl).Err()
}

func (r *responseCache) key(id string) string {
	return fmt.Sprintf("%s%s", r.prefix, id)
}
