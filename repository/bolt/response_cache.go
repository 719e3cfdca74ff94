package bolt

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bbolt "go.etcd.io/bbolt"
)

const defaultBucket = "api_responses"

type record struct {
	Body      json.RawMessage `json:"body"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// ResponseCache persists normalized upstream responses in a BoltDB file so
// a restarted instance starts warm.
type ResponseCache struct {
	db     *bbolt.DB
	bucket []byte
	now    func() time.Time
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string) (*ResponseCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	bucket := []byte(defaultBucket)
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &ResponseCache{db: db, bucket: bucket, now: time.Now}, nil
}

func (c *ResponseCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c == nil || c.db == nil {
		return nil, false, bbolt.ErrDatabaseNotOpen
	}
	var rec record
	var found bool
	err := c.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(c.bucket).Get([]byte(key))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &rec)
	})
	if err != nil || !found {
		return nil, false, err
	}
	if !c.now().Before(rec.ExpiresAt) {
		return nil, false, nil
	}
	return []byte(rec.Body), true, nil
}

// Set stores body only when it is valid JSON; the client caches normalized
// payloads exclusively.
func (c *ResponseCache) Set(_ context.Context, key string, body []byte, ttl time.Duration) error {
	if c == nil || c.db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	if ttl <= 0 {
		return nil
	}
	payload, err := json.Marshal(record{Body: body, ExpiresAt: c.now().Add(ttl)})
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(c.bucket).Put([]byte(key), payload)
	})
}

// Prune removes expired entries and reports how many were dropped.
func (c *ResponseCache) Prune(_ context.Context) (int, error) {
	if c == nil || c.db == nil {
		return 0, bbolt.ErrDatabaseNotOpen
	}
	now := c.now()
	removed := 0
	err := c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(c.bucket)
		var expired [][]byte
		// Deleting while iterating makes the cursor skip keys.
		err := b.ForEach(func(k, v []byte) error {
			var rec record
			if err := json.Unmarshal(v, &rec); err == nil && now.Before(rec.ExpiresAt) {
				return nil
			}
			expired = append(expired, append([]byte(nil), k...))
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range expired {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(expired)
		return nil
	})
	return removed, err
}

// Size returns the number of stored entries, expired ones included.
func (c *ResponseCache) Size() (int, error) {
	if c == nil || c.db == nil {
		return 0, bbolt.ErrDatabaseNotOpen
	}
	var count int
	err := c.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(c.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Close closes the Bolt database.
func (c *ResponseCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}
