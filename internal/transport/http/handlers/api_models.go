package handlers

import (
	"time"
)

// ErrorResponse is the generic error payload.
type ErrorResponse struct {
	Error     string            `json:"error"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// MessageResponse is a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// ConflictResponse reports a stale-version update together with the
// state that won, so the client can merge and retry.
type ConflictResponse struct {
	Error   string       `json:"error"`
	Current UserResponse `json:"current"`
}

// LoginRequest is the payload for the login endpoint.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse describes a login outcome. Token and user fields are
// present only on success.
type LoginResponse struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message"`
	Token       string   `json:"token,omitempty"`
	UserID      string   `json:"userId,omitempty"`
	Username    string   `json:"username,omitempty"`
	DisplayName string   `json:"displayName,omitempty"`
	Permissions []string `json:"permissions"`
}

// ChangePasswordRequest is the payload for self-service password change.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// ResetPasswordRequest is the payload for administrative password reset.
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required"`
}

// CreateUserRequest is the payload for account creation.
type CreateUserRequest struct {
	Username    string   `json:"username" binding:"required"`
	Password    string   `json:"password" binding:"required"`
	Email       string   `json:"email" binding:"required"`
	DisplayName string   `json:"displayName"`
	Phone       *string  `json:"phone"`
	RoleIDs     []string `json:"roleIds"`
}

// UpdateUserRequest carries profile changes plus the version the
// client read.
type UpdateUserRequest struct {
	Email       string  `json:"email" binding:"required"`
	DisplayName string  `json:"displayName"`
	Phone       *string `json:"phone"`
	Version     int64   `json:"version" binding:"required"`
}

// SetUserStatusRequest flips the account status.
type SetUserStatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// SetUserRolesRequest replaces the user's role set.
type SetUserRolesRequest struct {
	RoleIDs []string `json:"roleIds"`
}

// UserResponse is the full user view.
type UserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Phone       *string   `json:"phone,omitempty"`
	IsActive    bool      `json:"isActive"`
	RoleIDs     []string  `json:"roleIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Version     int64     `json:"version"`
}

// CreateRoleRequest is the payload for role creation.
type CreateRoleRequest struct {
	Name            string   `json:"name" binding:"required"`
	Description     string   `json:"description"`
	PermissionCodes []string `json:"permissionCodes"`
}

// UpdateRoleRequest renames a role.
type UpdateRoleRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// RolePermissionsRequest grants or revokes permission codes.
type RolePermissionsRequest struct {
	Codes []string `json:"codes" binding:"required"`
}

// RoleResponse is the full role view.
type RoleResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	PermissionCodes []string  `json:"permissionCodes"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	Version         int64     `json:"version"`
}

// CreatePermissionRequest is the payload for catalog entries.
type CreatePermissionRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Module      string `json:"module"`
	Type        string `json:"type" binding:"required"`
}

// PermissionResponse is one catalog entry.
type PermissionResponse struct {
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Module      string    `json:"module"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MenuRequest carries the mutable fields of a navigation node.
type MenuRequest struct {
	Name           string  `json:"name" binding:"required"`
	Path           string  `json:"path" binding:"required"`
	Component      string  `json:"component"`
	Icon           string  `json:"icon"`
	ParentID       *string `json:"parentId"`
	SortOrder      int     `json:"sortOrder"`
	PermissionCode *string `json:"permissionCode"`
	IsVisible      bool    `json:"isVisible"`
}

// MenuResponse is the full menu node view.
type MenuResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Path           string    `json:"path"`
	Component      string    `json:"component,omitempty"`
	Icon           string    `json:"icon,omitempty"`
	ParentID       *string   `json:"parentId,omitempty"`
	SortOrder      int       `json:"sortOrder"`
	PermissionCode *string   `json:"permissionCode,omitempty"`
	IsVisible      bool      `json:"isVisible"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Version        int64     `json:"version"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}
