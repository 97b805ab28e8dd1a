package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/commercekit/shop-platform/internal/core/domain"
	"github.com/commercekit/shop-platform/internal/core/port"
	"github.com/commercekit/shop-platform/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	Subject   string           `json:"subject,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, subject string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		Subject:   subject,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata: envelopeMetadata{
			"service":     p.appCfg.Name,
			"environment": p.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserRegistered publishes shop.user.registered events.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := struct {
		UserID       string    `json:"user_id"`
		Username     string    `json:"username"`
		Role         string    `json:"role"`
		RegisteredAt time.Time `json:"registered_at"`
	}{
		UserID:       event.UserID,
		Username:     event.Username,
		Role:         string(event.Role),
		RegisteredAt: event.RegisteredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "shop.user.registered", event.Username, event.RegisteredAt, payload)
}

// PublishOrderCreated publishes shop.order.created events.
func (p *EventPublisher) PublishOrderCreated(ctx context.Context, event domain.OrderCreatedEvent) error {
	payload := struct {
		OrderID    string    `json:"order_id"`
		Username   string    `json:"username"`
		ProductIDs []string  `json:"product_ids"`
		CreatedAt  time.Time `json:"created_at"`
	}{
		OrderID:    event.OrderID,
		Username:   event.Username,
		ProductIDs: event.ProductIDs,
		CreatedAt:  event.CreatedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "shop.order.created", event.Username, event.CreatedAt, payload)
}

// PublishOrderUpdated publishes shop.order.updated events.
func (p *EventPublisher) PublishOrderUpdated(ctx context.Context, event domain.OrderUpdatedEvent) error {
	payload := struct {
		OrderID    string    `json:"order_id"`
		Username   string    `json:"username"`
		ProductIDs []string  `json:"product_ids"`
		UpdatedAt  time.Time `json:"updated_at"`
	}{
		OrderID:    event.OrderID,
		Username:   event.Username,
		ProductIDs: event.ProductIDs,
		UpdatedAt:  event.UpdatedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "shop.order.updated", event.Username, event.UpdatedAt, payload)
}

// PublishOrderDeleted publishes shop.order.deleted events.
func (p *EventPublisher) PublishOrderDeleted(ctx context.Context, event domain.OrderDeletedEvent) error {
	payload := struct {
		OrderID   string    `json:"order_id"`
		DeletedAt time.Time `json:"deleted_at"`
	}{
		OrderID:   event.OrderID,
		DeletedAt: event.DeletedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "shop.order.deleted", "", event.DeletedAt, payload)
}

// PublishProductChanged publishes shop.product.changed events.
func (p *EventPublisher) PublishProductChanged(ctx context.Context, event domain.ProductChangedEvent) error {
	payload := struct {
		ProductID string    `json:"product_id"`
		Name      string    `json:"name"`
		Change    string    `json:"change"`
		ChangedAt time.Time `json:"changed_at"`
	}{
		ProductID: event.ProductID,
		Name:      event.Name,
		Change:    event.Change,
		ChangedAt: event.ChangedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "shop.product.changed", event.ProductID, event.ChangedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
