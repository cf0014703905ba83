package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Views stores JSON-encoded view state (dashboard snapshots, admin boards). Every
// write restarts the TTL; reads do not extend it.
type Views struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewViews(rdb *redis.Client, ttl time.Duration) *Views {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Views{rdb: rdb, ttl: ttl}
}

// Put overwrites key with v.
func (c *Views) Put(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, payload, c.ttl).Err()
}

// Get decodes key into v. A missing key is (false, nil).
func (c *Views) Get(ctx context.Context, key string, v any) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		// stale shape from an older build; treat as a miss
		_ = c.rdb.Del(ctx, key).Err()
		return false, nil
	}
	return true, nil
}

func (c *Views) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// Forget drops every key that ends with ":"+owner, i.e. all view state of one session.
func (c *Views) Forget(ctx context.Context, owner string) (int, error) {
	iter := c.rdb.Scan(ctx, 0, "*:"+owner, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	if err := c.Delete(ctx, keys...); err != nil {
		return 0, err
	}
	return len(keys), nil
}
