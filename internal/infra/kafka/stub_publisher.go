package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/commercekit/shop-platform/internal/core/domain"
	"github.com/commercekit/shop-platform/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments without a broker.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, subject string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("subject", subject),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserRegistered logs shop.user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	payload := map[string]any{
		"user_id":       event.UserID,
		"username":      event.Username,
		"role":          string(event.Role),
		"registered_at": event.RegisteredAt,
	}
	p.logEvent("shop.user.registered", event.Username, event.RegisteredAt, payload)
	return nil
}

// PublishOrderCreated logs shop.order.created events.
func (p *StubPublisher) PublishOrderCreated(_ context.Context, event domain.OrderCreatedEvent) error {
	payload := map[string]any{
		"order_id":    event.OrderID,
		"username":    event.Username,
		"product_ids": event.ProductIDs,
		"created_at":  event.CreatedAt,
	}
	p.logEvent("shop.order.created", event.Username, event.CreatedAt, payload)
	return nil
}

// PublishOrderUpdated logs shop.order.updated events.
func (p *StubPublisher) PublishOrderUpdated(_ context.Context, event domain.OrderUpdatedEvent) error {
	payload := map[string]any{
		"order_id":    event.OrderID,
		"username":    event.Username,
		"product_ids": event.ProductIDs,
		"updated_at":  event.UpdatedAt,
	}
	p.logEvent("shop.order.updated", event.Username, event.UpdatedAt, payload)
	return nil
}

// PublishOrderDeleted logs shop.order.deleted events.
func (p *StubPublisher) PublishOrderDeleted(_ context.Context, event domain.OrderDeletedEvent) error {
	payload := map[string]any{
		"order_id":   event.OrderID,
		"deleted_at": event.DeletedAt,
	}
	p.logEvent("shop.order.deleted", "", event.DeletedAt, payload)
	return nil
}

// PublishProductChanged logs shop.product.changed events.
func (p *StubPublisher) PublishProductChanged(_ context.Context, event domain.ProductChangedEvent) error {
	payload := map[string]any{
		"product_id": event.ProductID,
		"name":       event.Name,
		"change":     event.Change,
		"changed_at": event.ChangedAt,
	}
	p.logEvent("shop.product.changed", event.ProductID, event.ChangedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
