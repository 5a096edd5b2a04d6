package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/arklim/user-permission-service/internal/core/port"
)

// MemoryStore is the single-process reference implementation of
// port.CacheStore: a mutex-guarded map with per-entry absolute expiry and
// tracked keys so prefix invalidation stays O(tracked keys).
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	clock   port.Clock
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStoreOption customizes a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithClock injects a deterministic clock for expiry tests.
func WithClock(clock port.Clock) MemoryStoreOption {
	return func(s *MemoryStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewMemoryStore constructs an empty in-process store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	store := &MemoryStore{
		entries: make(map[string]memoryEntry),
		clock:   port.SystemClock(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Get returns the value for key, or port.ErrCacheMiss when absent or
// expired. Expired entries are reaped lazily.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, port.ErrCacheMiss
	}

	if !entry.expiresAt.IsZero() && !s.clock.Now().Before(entry.expiresAt) {
		s.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if current, still := s.entries[key]; still && current.expiresAt.Equal(entry.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, port.ErrCacheMiss
	}

	return entry.value, nil
}

// Set stores value under key. A non-positive ttl stores without expiry.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = s.clock.Now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

// Delete removes the given keys.
func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	for _, key := range keys {
		delete(s.entries, key)
	}
	s.mu.Unlock()
	return nil
}

// DeleteByPrefix removes every key beginning with prefix. The whole sweep
// happens under one lock, so a reader never observes a half-invalidated
// prefix once this returns.
func (s *MemoryStore) DeleteByPrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
	return nil
}

// Flush drops every entry.
func (s *MemoryStore) Flush() {
	s.mu.Lock()
	s.entries = make(map[string]memoryEntry)
	s.mu.Unlock()
}

// Len reports the number of live entries, counting expired stragglers
// that have not been reaped yet.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
