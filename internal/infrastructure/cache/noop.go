package cache

import (
	"context"
	"time"

	"github.com/mealplanner/backend/internal/domain"
)

// NoopCache never stores anything. Every Get is a miss.
type NoopCache struct{}

// NewNoopCache returns a cache for cache.type "none"
func NewNoopCache() NoopCache {
	return NoopCache{}
}

func (NoopCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, domain.ErrCacheMiss
}

func (NoopCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (NoopCache) Delete(ctx context.Context, key string) error { return nil }

func (NoopCache) DeletePrefix(ctx context.Context, prefix string) error { return nil }

func (NoopCache) Exists(ctx context.Context, key string) (bool, error) { return false, nil }
