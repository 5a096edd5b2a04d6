package domain

import "time"

// Event is a fact emitted by an aggregate mutation. Mutating methods
// return the events they produce; delivery is entirely caller-controlled
// and nothing accumulates on the entity itself.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

type EventMeta struct {
	At time.Time
}

func (m EventMeta) OccurredAt() time.Time { return m.At }

// UserCreatedEvent signals a new user account.
type UserCreatedEvent struct {
	EventMeta
	UserID   string
	Username string
}

func (UserCreatedEvent) EventName() string { return "user.created" }

// UserUpdatedEvent signals a profile change.
type UserUpdatedEvent struct {
	EventMeta
	UserID   string
	Username string
}

func (UserUpdatedEvent) EventName() string { return "user.updated" }

// UserPasswordChangedEvent signals a self-service password change.
type UserPasswordChangedEvent struct {
	EventMeta
	UserID string
}

func (UserPasswordChangedEvent) EventName() string { return "user.password.changed" }

// UserPasswordResetEvent signals an administrative password reset.
type UserPasswordResetEvent struct {
	EventMeta
	UserID string
}

func (UserPasswordResetEvent) EventName() string { return "user.password.reset" }

// UserStatusChangedEvent signals activation or deactivation.
type UserStatusChangedEvent struct {
	EventMeta
	UserID   string
	IsActive bool
}

func (UserStatusChangedEvent) EventName() string { return "user.status.changed" }

// UserRoleAssignedEvent signals a new user-role association.
type UserRoleAssignedEvent struct {
	EventMeta
	UserID string
	RoleID string
}

func (UserRoleAssignedEvent) EventName() string { return "user.role.assigned" }

// UserRoleRemovedEvent signals a removed user-role association.
type UserRoleRemovedEvent struct {
	EventMeta
	UserID string
	RoleID string
}

func (UserRoleRemovedEvent) EventName() string { return "user.role.removed" }

// UserDeletedEvent signals administrative removal of an account.
type UserDeletedEvent struct {
	EventMeta
	UserID string
}

func (UserDeletedEvent) EventName() string { return "user.deleted" }

// RoleCreatedEvent signals a new role.
type RoleCreatedEvent struct {
	EventMeta
	RoleID string
	Name   string
}

func (RoleCreatedEvent) EventName() string { return "role.created" }

// RoleUpdatedEvent signals a role rename or description change.
type RoleUpdatedEvent struct {
	EventMeta
	RoleID string
	Name   string
}

func (RoleUpdatedEvent) EventName() string { return "role.updated" }

// RoleDeletedEvent signals role removal.
type RoleDeletedEvent struct {
	EventMeta
	RoleID string
}

func (RoleDeletedEvent) EventName() string { return "role.deleted" }

// RolePermissionAssignedEvent signals a permission grant to a role.
type RolePermissionAssignedEvent struct {
	EventMeta
	RoleID         string
	PermissionCode string
}

func (RolePermissionAssignedEvent) EventName() string { return "role.permission.assigned" }

// RolePermissionRemovedEvent signals a permission revocation from a role.
type RolePermissionRemovedEvent struct {
	EventMeta
	RoleID         string
	PermissionCode string
}

func (RolePermissionRemovedEvent) EventName() string { return "role.permission.removed" }

// PermissionCreatedEvent signals a new catalog entry.
type PermissionCreatedEvent struct {
	EventMeta
	Code string
	Name string
}

func (PermissionCreatedEvent) EventName() string { return "permission.created" }

// MenuCreatedEvent signals a new navigation node.
type MenuCreatedEvent struct {
	EventMeta
	MenuID string
	Name   string
}

func (MenuCreatedEvent) EventName() string { return "menu.created" }

// MenuUpdatedEvent signals a navigation node change.
type MenuUpdatedEvent struct {
	EventMeta
	MenuID string
	Name   string
}

func (MenuUpdatedEvent) EventName() string { return "menu.updated" }

// MenuDeletedEvent signals navigation node removal.
type MenuDeletedEvent struct {
	EventMeta
	MenuID string
}

func (MenuDeletedEvent) EventName() string { return "menu.deleted" }
