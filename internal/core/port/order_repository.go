package port

import (
	"context"

	"github.com/commercekit/shop-platform/internal/core/domain"
)

// OrderRepository exposes persistence behavior for orders, including the
// owner lookup the authorization layer depends on.
type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	Update(ctx context.Context, order domain.Order) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Order, error)
	ListByUsername(ctx context.Context, username string) ([]domain.Order, error)
	OwnerOf(ctx context.Context, id string) (string, error)
}
