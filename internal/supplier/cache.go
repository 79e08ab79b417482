package supplier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores search results in Redis. Keys embed a generation counter that
// is bumped on every catalog write, which invalidates all prior entries.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewCache constructs a cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl, prefix: "procure:suppliers:"}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// SearchKey derives the cache key for the given criteria at the current generation.
func (c *Cache) SearchKey(ctx context.Context, criteria Criteria) (string, error) {
	if !c.enabled() {
		return "", nil
	}
	gen, err := c.client.Get(ctx, c.prefix+"gen").Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	encoded, err := json.Marshal(criteria)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(encoded)
	return c.prefix + "search:" + strconv.FormatInt(gen, 10) + ":" + hex.EncodeToString(sum[:12]), nil
}

// GetJSON unmarshals a cached JSON payload into dst. It reports whether the key existed.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	if !c.enabled() || key == "" {
		return false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON serialises v as JSON and stores it with the configured TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if !c.enabled() || key == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Invalidate bumps the generation counter.
func (c *Cache) Invalidate(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Incr(ctx, c.prefix+"gen").Err()
}
