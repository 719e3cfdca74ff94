package memory

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/fastygo/learner-portal/repository"
)

const defaultSize = 1024

type entry struct {
	body      []byte
	expiresAt time.Time
}

type responseCache struct {
	cache *lru.Cache[string, entry]
	now   func() time.Time
}

// NewResponseCache creates an in-process LRU response cache holding at most
// size entries.
func NewResponseCache(size int) (repository.ResponseCache, error) {
	return newResponseCache(size, time.Now)
}

func newResponseCache(size int, now func() time.Time) (*responseCache, error) {
	if size <= 0 {
		size = defaultSize
	}
	cache, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &responseCache{cache: cache, now: now}, nil
}

func (c *responseCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := c.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		c.cache.Remove(key)
		return nil, false, nil
	}
	return append([]byte(nil), e.body...), true, nil
}

func (c *responseCache) Set(_ context.Context, key string, body []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.cache.Add(key, entry{
		body:      append([]byte(nil), body...),
		expiresAt: c.now().Add(ttl),
	})
	return nil
}
