package port

import (
	"context"

	"github.com/commercekit/shop-platform/internal/core/domain"
)

// ProductCache is a read-through cache in front of the catalog. It caches
// catalog entries only; verification results and ownership records are
// never cached anywhere in the system.
type ProductCache interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
	Set(ctx context.Context, product domain.Product) error
	Invalidate(ctx context.Context, id string) error
}
