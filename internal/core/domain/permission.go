package domain

import (
	"strings"
	"time"
)

// PermissionType classifies how a permission is consumed by the UI.
type PermissionType string

const (
	PermissionTypeAPI    PermissionType = "api"
	PermissionTypeMenu   PermissionType = "menu"
	PermissionTypeButton PermissionType = "button"
)

const permissionCodeMaxLength = 50

// Permission is an append-mostly catalog entry. The code is its identity
// and never changes; the resolution hot path never deletes permissions.
type Permission struct {
	Code        string
	Name        string
	Description string
	Module      string
	Type        PermissionType
	CreatedAt   time.Time
}

// NewPermission validates and constructs a catalog entry.
func NewPermission(code, name, description, module string, permType PermissionType, now time.Time) (*Permission, []Event, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil, NewValidationError("code", "permission code is required")
	}
	if len(code) > permissionCodeMaxLength {
		return nil, nil, NewValidationError("code", "permission code must not exceed 50 characters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, nil, NewValidationError("name", "permission name is required")
	}

	switch permType {
	case PermissionTypeAPI, PermissionTypeMenu, PermissionTypeButton:
	default:
		return nil, nil, NewValidationError("type", "permission type must be api, menu, or button")
	}

	permission := &Permission{
		Code:        code,
		Name:        name,
		Description: description,
		Module:      module,
		Type:        permType,
		CreatedAt:   now,
	}

	return permission, []Event{PermissionCreatedEvent{EventMeta: EventMeta{At: now}, Code: code, Name: name}}, nil
}
