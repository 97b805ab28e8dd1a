package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/commercekit/shop-platform/internal/auth"
	"github.com/commercekit/shop-platform/internal/core/domain"
	"github.com/commercekit/shop-platform/internal/core/port"
	"github.com/commercekit/shop-platform/internal/repository"
)

var (
	// ErrOrderNotFound indicates the requested order does not exist.
	ErrOrderNotFound = errors.New("order not found")
	// ErrUnknownProduct indicates an order references a product the catalog does not know.
	ErrUnknownProduct = errors.New("order references unknown product")
	// ErrNoProducts indicates an order was submitted without line items.
	ErrNoProducts = errors.New("order must reference at least one product")
)

// OrderService coordinates order persistence and cross-service product
// validation. The owner of every order comes from the authenticated
// principal, never from the request body.
type OrderService struct {
	orders    port.OrderRepository
	catalog   port.ProductCatalog
	publisher port.EventPublisher
	logger    *zap.Logger
}

// NewOrderService constructs an OrderService instance.
func NewOrderService(orders port.OrderRepository, catalog port.ProductCatalog, publisher port.EventPublisher, logger *zap.Logger) *OrderService {
	return &OrderService{orders: orders, catalog: catalog, publisher: publisher, logger: logger}
}

func (s *OrderService) validateProducts(ctx context.Context, productIDs []string, bearerToken string) error {
	if s.catalog == nil {
		return nil
	}

	for _, id := range productIDs {
		exists, err := s.catalog.ProductExists(ctx, id, bearerToken)
		if err != nil {
			return fmt.Errorf("validate product %s: %w", id, err)
		}
		if !exists {
			return fmt.Errorf("%w: %s", ErrUnknownProduct, id)
		}
	}

	return nil
}

func normalizeProductIDs(productIDs []string) ([]string, error) {
	cleaned := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		cleaned = append(cleaned, id)
	}
	if len(cleaned) == 0 {
		return nil, ErrNoProducts
	}
	return cleaned, nil
}

// Create persists a new order owned by the principal. The bearer token is
// forwarded to the products service for line item validation.
func (s *OrderService) Create(ctx context.Context, principal domain.Principal, productIDs []string, bearerToken string) (domain.Order, error) {
	cleaned, err := normalizeProductIDs(productIDs)
	if err != nil {
		return domain.Order{}, err
	}

	if err := s.validateProducts(ctx, cleaned, bearerToken); err != nil {
		return domain.Order{}, err
	}

	now := time.Now().UTC()
	order := domain.Order{
		ID:         uuid.NewString(),
		Username:   principal.Identifier,
		ProductIDs: cleaned,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	s.publishOrderCreated(ctx, order)

	return order, nil
}

// Get fetches a single order. Access control happens at the gate before
// this is reached.
func (s *OrderService) Get(ctx context.Context, id string) (domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Order{}, ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	return *order, nil
}

// List returns every order for administrators and only the principal's own
// orders for everyone else.
func (s *OrderService) List(ctx context.Context, principal domain.Principal) ([]domain.Order, error) {
	if principal.HasRole(domain.RoleAdmin) {
		orders, err := s.orders.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list orders: %w", err)
		}
		return orders, nil
	}

	orders, err := s.orders.ListByUsername(ctx, principal.Identifier)
	if err != nil {
		return nil, fmt.Errorf("list orders by owner: %w", err)
	}
	return orders, nil
}

// ListByUsername returns the orders owned by the given username.
func (s *OrderService) ListByUsername(ctx context.Context, username string) ([]domain.Order, error) {
	orders, err := s.orders.ListByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list orders by owner: %w", err)
	}
	return orders, nil
}

// Update replaces an order's line items. Ownership is untouched regardless
// of who edits.
func (s *OrderService) Update(ctx context.Context, id string, productIDs []string, bearerToken string) (domain.Order, error) {
	cleaned, err := normalizeProductIDs(productIDs)
	if err != nil {
		return domain.Order{}, err
	}

	existing, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Order{}, ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}

	if err := s.validateProducts(ctx, cleaned, bearerToken); err != nil {
		return domain.Order{}, err
	}

	updated := *existing
	updated.ProductIDs = cleaned
	updated.UpdatedAt = time.Now().UTC()

	if err := s.orders.Update(ctx, updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Order{}, ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("update order: %w", err)
	}

	if s.publisher != nil {
		event := domain.OrderUpdatedEvent{
			OrderID:    updated.ID,
			Username:   updated.Username,
			ProductIDs: updated.ProductIDs,
			UpdatedAt:  updated.UpdatedAt,
		}
		if err := s.publisher.PublishOrderUpdated(ctx, event); err != nil {
			s.logger.Warn("failed to publish order updated event", zap.String("order_id", updated.ID), zap.Error(err))
		}
	}

	return updated, nil
}

// Delete removes an order.
func (s *OrderService) Delete(ctx context.Context, id string) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("delete order: %w", err)
	}

	if s.publisher != nil {
		event := domain.OrderDeletedEvent{
			OrderID:   id,
			DeletedAt: time.Now().UTC(),
		}
		if err := s.publisher.PublishOrderDeleted(ctx, event); err != nil {
			s.logger.Warn("failed to publish order deleted event", zap.String("order_id", id), zap.Error(err))
		}
	}

	return nil
}

// OwnerOf satisfies auth.OwnerLookup so the authorization gate can resolve
// order ownership from the store.
func (s *OrderService) OwnerOf(ctx context.Context, resourceID string) (string, error) {
	owner, err := s.orders.OwnerOf(ctx, resourceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", auth.ErrResourceNotFound
		}
		return "", fmt.Errorf("resolve order owner: %w", err)
	}
	return owner, nil
}

func (s *OrderService) publishOrderCreated(ctx context.Context, order domain.Order) {
	if s.publisher == nil {
		return
	}

	event := domain.OrderCreatedEvent{
		OrderID:    order.ID,
		Username:   order.Username,
		ProductIDs: order.ProductIDs,
		CreatedAt:  order.CreatedAt,
	}
	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Warn("failed to publish order created event", zap.String("order_id", order.ID), zap.Error(err))
	}
}

var _ auth.OwnerLookup = (*OrderService)(nil)
