package port

import (
	"context"

	"github.com/commercekit/shop-platform/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishOrderCreated(ctx context.Context, event domain.OrderCreatedEvent) error
	PublishOrderUpdated(ctx context.Context, event domain.OrderUpdatedEvent) error
	PublishOrderDeleted(ctx context.Context, event domain.OrderDeletedEvent) error
	PublishProductChanged(ctx context.Context, event domain.ProductChangedEvent) error
}
