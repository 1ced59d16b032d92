// Package cachemanager provides a typed in-memory cache and a read-through
// wrapper used to memoize report computations.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a typed key/value cache with per-item TTL.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K)
	Flush(ctx context.Context)
	ItemCount() int
}
