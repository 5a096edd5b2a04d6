package port

import (
	"context"

	"github.com/arklim/user-permission-service/internal/core/domain"
)

// MenuRepository manages navigation nodes.
type MenuRepository interface {
	Create(ctx context.Context, menu domain.Menu) error
	GetByID(ctx context.Context, id string) (*domain.Menu, error)
	List(ctx context.Context) ([]domain.Menu, error)
	Update(ctx context.Context, menu domain.Menu) error
	Delete(ctx context.Context, id string) error
}
