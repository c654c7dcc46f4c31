package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/partlens/recognition-api/internal/core/domain"
)

const codesKey = "catalog:codes"

// CodesCache keeps the catalog code list in Redis for a bounded time.
// Key format: catalog:codes
type CodesCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCodesCache creates a CodesCache wrapping the given Redis client.
func NewCodesCache(client *redis.Client, ttl time.Duration) *CodesCache {
	return &CodesCache{client: client, ttl: ttl}
}

// Get returns the cached list. A missing key is a miss, not an error.
func (c *CodesCache) Get(ctx context.Context) ([]domain.SkuCode, bool, error) {
	raw, err := c.client.Get(ctx, codesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("codes cache get: %w", err)
	}

	var codes []domain.SkuCode
	if err := json.Unmarshal(raw, &codes); err != nil {
		return nil, false, fmt.Errorf("codes cache decode: %w", err)
	}
	return codes, true, nil
}

// Set stores codes and expires them after the configured TTL.
func (c *CodesCache) Set(ctx context.Context, codes []domain.SkuCode) error {
	raw, err := json.Marshal(codes)
	if err != nil {
		return fmt.Errorf("codes cache encode: %w", err)
	}
	if err := c.client.Set(ctx, codesKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("codes cache set: %w", err)
	}
	return nil
}
