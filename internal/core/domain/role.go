package domain

import (
	"slices"
	"strings"
	"time"

	uuid "github.com/google/uuid"
)

const roleNameMaxLength = 50

// Role groups permission codes under a unique name. It owns its
// permission associations; permission grants elsewhere go through it.
type Role struct {
	EntityMeta
	Name            string
	Description     string
	PermissionCodes []string
}

// NewRole validates and constructs a role.
func NewRole(name, description string, now time.Time) (*Role, []Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil, NewValidationError("name", "role name is required")
	}
	if len(name) > roleNameMaxLength {
		return nil, nil, NewValidationError("name", "role name must not exceed 50 characters")
	}

	role := &Role{
		EntityMeta:  newEntityMeta(uuid.NewString(), now),
		Name:        name,
		Description: description,
	}

	return role, []Event{RoleCreatedEvent{EventMeta: EventMeta{At: now}, RoleID: role.ID, Name: role.Name}}, nil
}

// Rename changes the role name and description.
func (r *Role) Rename(name, description string, now time.Time) ([]Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name", "role name is required")
	}
	if len(name) > roleNameMaxLength {
		return nil, NewValidationError("name", "role name must not exceed 50 characters")
	}

	r.Name = name
	r.Description = description
	r.Touch(now)

	return []Event{RoleUpdatedEvent{EventMeta: EventMeta{At: now}, RoleID: r.ID, Name: r.Name}}, nil
}

// AssignPermission grants a permission code. Granting an already-held
// code is a no-op and returns no events.
func (r *Role) AssignPermission(code string, now time.Time) []Event {
	if code == "" || slices.Contains(r.PermissionCodes, code) {
		return nil
	}

	r.PermissionCodes = append(r.PermissionCodes, code)
	r.Touch(now)

	return []Event{RolePermissionAssignedEvent{EventMeta: EventMeta{At: now}, RoleID: r.ID, PermissionCode: code}}
}

// RemovePermission revokes a permission code. Revoking a code the role
// does not hold is a no-op.
func (r *Role) RemovePermission(code string, now time.Time) []Event {
	idx := slices.Index(r.PermissionCodes, code)
	if idx < 0 {
		return nil
	}

	r.PermissionCodes = slices.Delete(r.PermissionCodes, idx, idx+1)
	r.Touch(now)

	return []Event{RolePermissionRemovedEvent{EventMeta: EventMeta{At: now}, RoleID: r.ID, PermissionCode: code}}
}

// HasPermission reports whether the role holds the given code.
func (r *Role) HasPermission(code string) bool {
	return slices.Contains(r.PermissionCodes, code)
}

// UserRole is the user↔role join record; identity is the pair itself.
type UserRole struct {
	UserID string
	RoleID string
}

// RolePermission is the role↔permission join record.
type RolePermission struct {
	RoleID         string
	PermissionCode string
}
