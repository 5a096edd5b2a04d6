package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/arklim/user-permission-service/internal/cache"
	"github.com/arklim/user-permission-service/internal/core/domain"
)

func seedRoles(t *testing.T) *fakeRoleRepo {
	t.Helper()
	roles := newFakeRoleRepo()
	roles.add(&domain.Role{
		EntityMeta:      domain.EntityMeta{ID: "r1", Version: 1},
		Name:            "editor",
		PermissionCodes: []string{"doc:write", "doc:read"},
	})
	roles.add(&domain.Role{
		EntityMeta:      domain.EntityMeta{ID: "r2", Version: 1},
		Name:            "viewer",
		PermissionCodes: []string{"doc:read", "audit:read"},
	})
	roles.assign("u1", "r1", "r2")
	return roles
}

func TestResolveUnionDedupedSorted(t *testing.T) {
	resolver := NewPermissionResolver(seedRoles(t), nil, time.Minute)

	codes, err := resolver.Resolve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	want := []string{"audit:read", "doc:read", "doc:write"}
	if len(codes) != len(want) {
		t.Fatalf("expected %v, got %v", want, codes)
	}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, codes)
		}
	}
}

func TestResolveNoRolesYieldsEmptySet(t *testing.T) {
	resolver := NewPermissionResolver(seedRoles(t), nil, time.Minute)

	codes, err := resolver.Resolve(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(codes) != 0 {
		t.Fatalf("expected empty set, got %v", codes)
	}
}

func TestResolveRequiresUserID(t *testing.T) {
	resolver := NewPermissionResolver(seedRoles(t), nil, time.Minute)
	if _, err := resolver.Resolve(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty user id")
	}
}

func TestResolveUsesCache(t *testing.T) {
	roles := seedRoles(t)
	resolver := NewPermissionResolver(roles, cache.NewMemoryStore(), time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := resolver.Resolve(context.Background(), "u1"); err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
	}
	if roles.listByUserCalls != 1 {
		t.Fatalf("expected one repository hit, got %d", roles.listByUserCalls)
	}
}

func TestAuthorizeExactMatch(t *testing.T) {
	claims := claimsWith("user:read", "role:read")

	if !Authorize(claims, "user:read") {
		t.Fatalf("exact code must be allowed")
	}
	if Authorize(claims, "user") {
		t.Fatalf("prefix must not match")
	}
	if Authorize(claims, "user:read:extra") {
		t.Fatalf("longer code must not match")
	}
	if Authorize(claims, "") {
		t.Fatalf("empty required code must deny")
	}
	if Authorize(nil, "user:read") {
		t.Fatalf("nil claims must deny")
	}
}
