package port

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss signals that a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// CacheStore is the derived-data cache contract. The store is strictly a
// disposable view over the persistent source of truth: losing every entry
// must never change an authorization outcome, only latency.
//
// Deletions are synchronous from the caller's perspective: once Delete or
// DeleteByPrefix returns, any subsequently issued Get observes the miss.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}
