package port

import (
	"context"

	"github.com/arklim/user-permission-service/internal/core/domain"
)

// UserListFilter narrows and pages user list queries.
type UserListFilter struct {
	Keyword  string
	IsActive *bool
	Limit    int
	Offset   int
}

// UserRepository exposes persistence behavior for users. Reads eager-load
// the role-id associations so permission resolution is one logical fetch.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// Update persists the aggregate guarded by its previous version stamp;
	// a concurrent edit surfaces as repository.ErrVersionConflict.
	Update(ctx context.Context, user domain.User, expectedVersion int64) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter UserListFilter) ([]domain.User, error)
	Count(ctx context.Context, filter UserListFilter) (int, error)
	ReplaceRoles(ctx context.Context, userID string, roleIDs []string) error
}
