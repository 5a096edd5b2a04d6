package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type snapshot struct {
	Codes []string `json:"codes"`
}

func TestGetOrComputeCachesResult(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	calls := 0
	compute := func(ctx context.Context) (snapshot, error) {
		calls++
		return snapshot{Codes: []string{"user:read"}}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := GetOrCompute(ctx, store, "k", time.Minute, compute)
		if err != nil {
			t.Fatalf("GetOrCompute returned error: %v", err)
		}
		if len(got.Codes) != 1 || got.Codes[0] != "user:read" {
			t.Fatalf("unexpected value %+v", got)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one computation, got %d", calls)
	}
}

func TestGetOrComputePropagatesComputeError(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	wantErr := errors.New("backend down")

	_, err := GetOrCompute(ctx, store, "k", time.Minute, func(ctx context.Context) (snapshot, error) {
		return snapshot{}, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected compute error, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("failed computations must not be cached")
	}
}

func TestGetOrComputeNilStoreComputesDirectly(t *testing.T) {
	got, err := GetOrCompute(context.Background(), nil, "k", time.Minute, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("GetOrCompute returned error: %v", err)
	}
	if got != 42 {
		t.Fatalf("unexpected value %d", got)
	}
}

func TestGetOrComputeDropsUndecodableEntry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Set(ctx, "k", []byte("{not json"), time.Minute)

	got, err := GetOrCompute(ctx, store, "k", time.Minute, func(ctx context.Context) (snapshot, error) {
		return snapshot{Codes: []string{"fresh"}}, nil
	})
	if err != nil {
		t.Fatalf("GetOrCompute returned error: %v", err)
	}
	if len(got.Codes) != 1 || got.Codes[0] != "fresh" {
		t.Fatalf("expected recomputed value, got %+v", got)
	}

	raw, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("recomputed value should be stored: %v", err)
	}
	if string(raw) != `{"codes":["fresh"]}` {
		t.Fatalf("stored entry not replaced: %s", raw)
	}
}

func TestGetOrComputeDegradesOnFaultyStore(t *testing.T) {
	got, err := GetOrCompute(context.Background(), faultyStore{}, "k", time.Minute, func(ctx context.Context) (string, error) {
		return "computed", nil
	})
	if err != nil {
		t.Fatalf("a broken store must not fail the request: %v", err)
	}
	if got != "computed" {
		t.Fatalf("unexpected value %q", got)
	}
}

type faultyStore struct{}

func (faultyStore) Get(context.Context, string) ([]byte, error) {
	return nil, fmt.Errorf("connection refused")
}

func (faultyStore) Set(context.Context, string, []byte, time.Duration) error {
	return fmt.Errorf("connection refused")
}

func (faultyStore) Delete(context.Context, ...string) error {
	return fmt.Errorf("connection refused")
}

func (faultyStore) DeleteByPrefix(context.Context, string) error {
	return fmt.Errorf("connection refused")
}
