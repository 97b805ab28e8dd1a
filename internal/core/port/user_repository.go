package port

import (
	"context"

	"github.com/commercekit/shop-platform/internal/core/domain"
)

// UserRepository exposes persistence behavior for the credential store.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
