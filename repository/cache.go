package repository

import (
	"context"
	"time"
)

// ResponseCache stores normalized upstream response bodies keyed by request URL.
// A miss is reported as (nil, false, nil).
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
}
