package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/arklim/user-permission-service/internal/core/port"
)

func newTestStore(t *testing.T) (*CacheStore, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheStore(client), srv
}

func TestCacheStoreGetSet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, port.ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	if err := store.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if string(got) != "v" {
		t.Fatalf("unexpected value %q", got)
	}
}

func TestCacheStoreTTLExpiry(t *testing.T) {
	store, srv := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	srv.FastForward(2 * time.Minute)
	if _, err := store.Get(ctx, "k"); !errors.Is(err, port.ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss after expiry, got %v", err)
	}
}

func TestCacheStoreDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	store.Set(ctx, "a", []byte("1"), 0)
	store.Set(ctx, "b", []byte("2"), 0)

	if err := store.Delete(ctx, "a", "b", "absent"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := store.Get(ctx, "a"); !errors.Is(err, port.ErrCacheMiss) {
		t.Fatalf("deleted key should miss")
	}
	if err := store.Delete(ctx); err != nil {
		t.Fatalf("empty delete must be a no-op: %v", err)
	}
}

func TestCacheStoreDeleteByPrefix(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	// More keys than one SCAN batch so the cursor loop runs.
	for i := 0; i < 250; i++ {
		if err := store.Set(ctx, fmt.Sprintf("user:permissions:%d", i), []byte("x"), 0); err != nil {
			t.Fatalf("Set returned error: %v", err)
		}
	}
	store.Set(ctx, "role:list", []byte("keep"), 0)

	if err := store.DeleteByPrefix(ctx, "user:permissions"); err != nil {
		t.Fatalf("DeleteByPrefix returned error: %v", err)
	}

	for i := 0; i < 250; i++ {
		key := fmt.Sprintf("user:permissions:%d", i)
		if _, err := store.Get(ctx, key); !errors.Is(err, port.ErrCacheMiss) {
			t.Fatalf("expected %s to be deleted", key)
		}
	}
	if _, err := store.Get(ctx, "role:list"); err != nil {
		t.Fatalf("entry outside the prefix must survive: %v", err)
	}
}
