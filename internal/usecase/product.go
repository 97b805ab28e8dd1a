package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/commercekit/shop-platform/internal/core/domain"
	"github.com/commercekit/shop-platform/internal/core/port"
	"github.com/commercekit/shop-platform/internal/repository"
)

// ErrProductNotFound indicates the requested product does not exist.
var ErrProductNotFound = errors.New("product not found")

// ProductService coordinates the catalog with its read-through cache.
// The cache holds catalog entries only and is invalidated on every mutation.
type ProductService struct {
	products  port.ProductRepository
	cache     port.ProductCache
	publisher port.EventPublisher
	logger    *zap.Logger
}

// NewProductService constructs a ProductService instance.
func NewProductService(products port.ProductRepository, cache port.ProductCache, publisher port.EventPublisher, logger *zap.Logger) *ProductService {
	return &ProductService{products: products, cache: cache, publisher: publisher, logger: logger}
}

// Create adds a product to the catalog.
func (s *ProductService) Create(ctx context.Context, name, description, category string) (domain.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Product{}, fmt.Errorf("product name is required")
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Category:    strings.TrimSpace(category),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}

	s.publishChange(ctx, product, "created")

	return product, nil
}

// Get fetches a product, trying the cache before the repository.
func (s *ProductService) Get(ctx context.Context, id string) (domain.Product, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, id); err == nil {
			return *cached, nil
		} else if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("product cache read failed", zap.String("product_id", id), zap.Error(err))
		}
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Product{}, ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, *product); err != nil {
			s.logger.Warn("product cache write failed", zap.String("product_id", id), zap.Error(err))
		}
	}

	return *product, nil
}

// List returns the full catalog.
func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Search matches the query against name, description, and category.
func (s *ProductService) Search(ctx context.Context, query string) ([]domain.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx)
	}

	products, err := s.products.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

// Update modifies a product and drops its cached entry.
func (s *ProductService) Update(ctx context.Context, id, name, description, category string) (domain.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Product{}, fmt.Errorf("product name is required")
	}

	existing, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Product{}, ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}

	updated := *existing
	updated.Name = name
	updated.Description = strings.TrimSpace(description)
	updated.Category = strings.TrimSpace(category)
	updated.UpdatedAt = time.Now().UTC()

	if err := s.products.Update(ctx, updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Product{}, ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}

	s.invalidate(ctx, id)
	s.publishChange(ctx, updated, "updated")

	return updated, nil
}

// Delete removes a product and drops its cached entry.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	existing, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("get product: %w", err)
	}

	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}

	s.invalidate(ctx, id)
	s.publishChange(ctx, *existing, "deleted")

	return nil
}

func (s *ProductService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("product cache invalidation failed", zap.String("product_id", id), zap.Error(err))
	}
}

func (s *ProductService) publishChange(ctx context.Context, product domain.Product, change string) {
	if s.publisher == nil {
		return
	}

	event := domain.ProductChangedEvent{
		ProductID: product.ID,
		Name:      product.Name,
		Change:    change,
		ChangedAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishProductChanged(ctx, event); err != nil {
		s.logger.Warn("failed to publish product changed event", zap.String("product_id", product.ID), zap.Error(err))
	}
}
