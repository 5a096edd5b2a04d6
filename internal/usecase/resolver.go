package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/arklim/user-permission-service/internal/cache"
	"github.com/arklim/user-permission-service/internal/core/port"
)

// PermissionResolver derives the flattened permission set reachable from
// a user through its roles. This is the only place permission semantics
// are computed; policy checks consume its output and never re-derive.
type PermissionResolver struct {
	roles port.RoleRepository
	store port.CacheStore
	ttl   time.Duration
}

// NewPermissionResolver wires the resolver. A nil store disables caching.
func NewPermissionResolver(roles port.RoleRepository, store port.CacheStore, ttl time.Duration) *PermissionResolver {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &PermissionResolver{roles: roles, store: store, ttl: ttl}
}

// Resolve returns the deduplicated union of permission codes across every
// role assigned to the user, sorted so the result is stable within a
// resolution and safe to hash or compare. A user with zero roles resolves
// to the empty set.
func (r *PermissionResolver) Resolve(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	return cache.GetOrCompute(ctx, r.store, cache.UserPermissions(userID), r.ttl, func(ctx context.Context) ([]string, error) {
		roles, err := r.roles.ListByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list user roles: %w", err)
		}

		seen := make(map[string]struct{})
		for _, role := range roles {
			for _, code := range role.PermissionCodes {
				seen[code] = struct{}{}
			}
		}

		codes := make([]string, 0, len(seen))
		for code := range seen {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		return codes, nil
	})
}
