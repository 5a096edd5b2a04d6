package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/arklim/user-permission-service/internal/core/port"
)

// GetOrCompute returns the cached value for key, or invokes compute,
// stores its result with the given ttl, and returns it. There is no
// single-flight guarantee: concurrent misses may all compute, and the
// store converges to one final value per key (last write wins).
//
// Cache faults are non-fatal by contract: a broken backend degrades to
// direct computation, never to a failed request.
func GetOrCompute[T any](ctx context.Context, store port.CacheStore, key string, ttl time.Duration, compute func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if store != nil {
		raw, err := store.Get(ctx, key)
		if err == nil {
			var cached T
			if unmarshalErr := json.Unmarshal(raw, &cached); unmarshalErr == nil {
				return cached, nil
			}
			// Undecodable entry: drop it and recompute.
			_ = store.Delete(ctx, key)
		} else if !errors.Is(err, port.ErrCacheMiss) && ctx.Err() != nil {
			return zero, ctx.Err()
		}
	}

	value, err := compute(ctx)
	if err != nil {
		return zero, err
	}

	if store != nil {
		if raw, marshalErr := json.Marshal(value); marshalErr == nil {
			_ = store.Set(ctx, key, raw, ttl)
		}
	}

	return value, nil
}
