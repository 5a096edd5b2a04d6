package usecase

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/arklim/user-permission-service/internal/cache"
	"github.com/arklim/user-permission-service/internal/core/domain"
)

type roleFixture struct {
	svc         *RoleService
	roles       *fakeRoleRepo
	permissions *fakePermissionRepo
	pub         *capturePublisher
}

func newRoleFixture(t *testing.T) *roleFixture {
	t.Helper()

	roles := newFakeRoleRepo()
	permissions := newFakePermissionRepo()
	pub := &capturePublisher{}
	store := cache.NewMemoryStore()

	for _, code := range []string{"doc:read", "doc:write", "audit:read"} {
		permission, _, err := domain.NewPermission(code, code, "", "docs", domain.PermissionTypeAPI, time.Now().UTC())
		if err != nil {
			t.Fatalf("NewPermission returned error: %v", err)
		}
		if err := permissions.Create(context.Background(), *permission); err != nil {
			t.Fatalf("seed permission: %v", err)
		}
	}

	svc, err := NewRoleService(RoleServiceDeps{
		Roles:       roles,
		Permissions: permissions,
		Store:       store,
		Invalidator: cache.NewInvalidator(store, nil),
		Publisher:   pub,
	})
	if err != nil {
		t.Fatalf("NewRoleService returned error: %v", err)
	}
	return &roleFixture{svc: svc, roles: roles, permissions: permissions, pub: pub}
}

func TestCreateRoleWithInitialPermissions(t *testing.T) {
	f := newRoleFixture(t)

	role, err := f.svc.Create(context.Background(), "editor", "can edit", []string{"doc:read", "doc:write"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !role.HasPermission("doc:read") || !role.HasPermission("doc:write") {
		t.Fatalf("initial codes not assigned: %v", role.PermissionCodes)
	}

	names := f.pub.names()
	if !slices.Contains(names, "role.created") || !slices.Contains(names, "role.permission.assigned") {
		t.Fatalf("expected creation and grant events, got %v", names)
	}
}

func TestCreateRoleUnknownPermission(t *testing.T) {
	f := newRoleFixture(t)

	_, err := f.svc.Create(context.Background(), "editor", "", []string{"missing:code"})
	if !errors.Is(err, ErrPermissionNotFound) {
		t.Fatalf("expected ErrPermissionNotFound, got %v", err)
	}
}

func TestCreateRoleDuplicateName(t *testing.T) {
	f := newRoleFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, "editor", "", nil); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	_, err := f.svc.Create(ctx, "editor", "", nil)
	ruleErr, ok := domain.AsRuleError(err)
	if !ok {
		t.Fatalf("expected RuleError, got %v", err)
	}
	if ruleErr.Code != "role.duplicate_name" {
		t.Fatalf("unexpected rule code %q", ruleErr.Code)
	}
}

func TestGrantPermissionsIdempotent(t *testing.T) {
	f := newRoleFixture(t)
	ctx := context.Background()

	role, err := f.svc.Create(ctx, "editor", "", []string{"doc:read"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	published := len(f.pub.events)
	if err := f.svc.GrantPermissions(ctx, role.ID, []string{"doc:read"}); err != nil {
		t.Fatalf("repeated grant must succeed: %v", err)
	}
	if len(f.pub.events) != published {
		t.Fatalf("no-op grant must not publish events")
	}

	if err := f.svc.GrantPermissions(ctx, role.ID, []string{"doc:write", "doc:read"}); err != nil {
		t.Fatalf("GrantPermissions returned error: %v", err)
	}
	codes, err := f.svc.PermissionCodes(ctx, role.ID)
	if err != nil {
		t.Fatalf("PermissionCodes returned error: %v", err)
	}
	if len(codes) != 2 {
		t.Fatalf("expected two codes, got %v", codes)
	}
}

func TestRevokePermissions(t *testing.T) {
	f := newRoleFixture(t)
	ctx := context.Background()

	role, err := f.svc.Create(ctx, "editor", "", []string{"doc:read", "doc:write"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := f.svc.RevokePermissions(ctx, role.ID, []string{"doc:write", "never:held"}); err != nil {
		t.Fatalf("RevokePermissions returned error: %v", err)
	}
	codes, err := f.svc.PermissionCodes(ctx, role.ID)
	if err != nil {
		t.Fatalf("PermissionCodes returned error: %v", err)
	}
	if len(codes) != 1 || codes[0] != "doc:read" {
		t.Fatalf("expected [doc:read], got %v", codes)
	}
}

func TestRoleUpdateRename(t *testing.T) {
	f := newRoleFixture(t)
	ctx := context.Background()

	role, err := f.svc.Create(ctx, "editor", "", nil)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	updated, err := f.svc.Update(ctx, role.ID, "publisher", "can publish")
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Name != "publisher" {
		t.Fatalf("rename not applied: %q", updated.Name)
	}
}

func TestRoleDelete(t *testing.T) {
	f := newRoleFixture(t)
	ctx := context.Background()

	role, err := f.svc.Create(ctx, "editor", "", nil)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := f.svc.Delete(ctx, role.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := f.svc.Get(ctx, role.ID); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
	if err := f.svc.Delete(ctx, role.ID); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound for repeated delete, got %v", err)
	}
}

func TestRoleListCached(t *testing.T) {
	f := newRoleFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, "editor", "", nil); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	first, err := f.svc.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected one role, got %d", len(first))
	}

	// A mutation must drop the cached listing.
	if _, err := f.svc.Create(ctx, "viewer", "", nil); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	second, err := f.svc.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("listing must reflect the new role, got %d", len(second))
	}
}
