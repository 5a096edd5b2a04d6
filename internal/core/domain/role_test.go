package domain

import (
	"testing"
)

func TestNewRoleValidation(t *testing.T) {
	if _, _, err := NewRole("", "desc", testNow); err == nil {
		t.Fatalf("expected error for empty name")
	}

	long := make([]byte, 51)
	for i := range long {
		long[i] = 'x'
	}
	if _, _, err := NewRole(string(long), "", testNow); err == nil {
		t.Fatalf("expected error for overlong name")
	}
}

func TestAssignPermissionIdempotent(t *testing.T) {
	role, _, err := NewRole("editor", "", testNow)
	if err != nil {
		t.Fatalf("NewRole returned error: %v", err)
	}

	if events := role.AssignPermission("doc:read", testNow); len(events) != 1 {
		t.Fatalf("expected one event on first grant, got %d", len(events))
	}
	if events := role.AssignPermission("doc:read", testNow); len(events) != 0 {
		t.Fatalf("repeated grant must produce no events")
	}
	if len(role.PermissionCodes) != 1 {
		t.Fatalf("expected one code, got %v", role.PermissionCodes)
	}

	if events := role.RemovePermission("doc:write", testNow); len(events) != 0 {
		t.Fatalf("revoking an unheld code must produce no events")
	}
	if events := role.RemovePermission("doc:read", testNow); len(events) != 1 {
		t.Fatalf("expected one revocation event, got %d", len(events))
	}
	if role.HasPermission("doc:read") {
		t.Fatalf("code should be revoked")
	}
}
