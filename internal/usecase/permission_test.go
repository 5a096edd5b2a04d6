package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/arklim/user-permission-service/internal/cache"
	"github.com/arklim/user-permission-service/internal/core/domain"
)

func newPermissionService(t *testing.T) (*PermissionService, *fakePermissionRepo) {
	t.Helper()

	permissions := newFakePermissionRepo()
	store := cache.NewMemoryStore()
	svc, err := NewPermissionService(PermissionServiceDeps{
		Permissions: permissions,
		Store:       store,
		Invalidator: cache.NewInvalidator(store, nil),
		Publisher:   &capturePublisher{},
	})
	if err != nil {
		t.Fatalf("NewPermissionService returned error: %v", err)
	}
	return svc, permissions
}

func TestCreatePermission(t *testing.T) {
	svc, _ := newPermissionService(t)
	ctx := context.Background()

	permission, err := svc.Create(ctx, "user:read", "Read users", "", "user", domain.PermissionTypeAPI)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if permission.Code != "user:read" {
		t.Fatalf("unexpected code %q", permission.Code)
	}

	loaded, err := svc.Get(ctx, "user:read")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if loaded.Name != "Read users" {
		t.Fatalf("unexpected name %q", loaded.Name)
	}
}

func TestCreatePermissionDuplicateCode(t *testing.T) {
	svc, _ := newPermissionService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "user:read", "Read users", "", "user", domain.PermissionTypeAPI); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	_, err := svc.Create(ctx, "user:read", "Read users again", "", "user", domain.PermissionTypeAPI)
	ruleErr, ok := domain.AsRuleError(err)
	if !ok {
		t.Fatalf("expected RuleError, got %v", err)
	}
	if ruleErr.Code != "permission.duplicate_code" {
		t.Fatalf("unexpected rule code %q", ruleErr.Code)
	}
}

func TestCreatePermissionInvalidType(t *testing.T) {
	svc, _ := newPermissionService(t)
	_, err := svc.Create(context.Background(), "user:read", "Read users", "", "user", "widget")
	if !domain.IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestGetPermissionNotFound(t *testing.T) {
	svc, _ := newPermissionService(t)
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrPermissionNotFound) {
		t.Fatalf("expected ErrPermissionNotFound, got %v", err)
	}
}

func TestListGroupedByModule(t *testing.T) {
	svc, _ := newPermissionService(t)
	ctx := context.Background()

	seed := []struct{ code, module string }{
		{"user:read", "user"},
		{"role:read", "role"},
		{"user:create", "user"},
	}
	for _, s := range seed {
		if _, err := svc.Create(ctx, s.code, s.code, "", s.module, domain.PermissionTypeAPI); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	groups, err := svc.ListGrouped(ctx)
	if err != nil {
		t.Fatalf("ListGrouped returned error: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected two modules, got %d", len(groups))
	}
	if groups[0].Module != "user" || groups[1].Module != "role" {
		t.Fatalf("groups must order by first appearance: %+v", groups)
	}
	if len(groups[0].Permissions) != 2 {
		t.Fatalf("expected two user permissions, got %d", len(groups[0].Permissions))
	}
}

func TestListReflectsNewEntries(t *testing.T) {
	svc, _ := newPermissionService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "user:read", "Read users", "", "user", domain.PermissionTypeAPI); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	first, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected one entry, got %d", len(first))
	}

	// Creation invalidates the cached catalog.
	if _, err := svc.Create(ctx, "user:create", "Create users", "", "user", domain.PermissionTypeAPI); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	second, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("catalog must reflect the new entry, got %d", len(second))
	}
}
