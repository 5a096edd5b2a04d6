package port

import (
	"context"

	"github.com/arklim/user-permission-service/internal/core/domain"
)

// PermissionRepository manages the permission catalog.
type PermissionRepository interface {
	Create(ctx context.Context, permission domain.Permission) error
	GetByCode(ctx context.Context, code string) (*domain.Permission, error)
	List(ctx context.Context) ([]domain.Permission, error)
	ListByModule(ctx context.Context, module string) ([]domain.Permission, error)
}
