package usecase

import "errors"

var (
	// ErrInvalidCredentials covers unknown username, wrong password, and
	// inactive account uniformly; the login surface never distinguishes.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden indicates a verified token lacking the required permission.
	ErrForbidden = errors.New("insufficient permissions")
	// ErrUserNotFound is returned when operating on a nonexistent user.
	ErrUserNotFound = errors.New("user not found")
	// ErrRoleNotFound is returned when operating on a nonexistent role.
	ErrRoleNotFound = errors.New("role not found")
	// ErrMenuNotFound is returned when operating on a nonexistent menu.
	ErrMenuNotFound = errors.New("menu not found")
	// ErrPermissionNotFound is returned when a permission code is not in the catalog.
	ErrPermissionNotFound = errors.New("permission not found")
)
