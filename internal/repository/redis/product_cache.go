package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/commercekit/shop-platform/internal/core/domain"
	"github.com/commercekit/shop-platform/internal/core/port"
	"github.com/commercekit/shop-platform/internal/repository"
)

// ProductCache caches catalog entries in Redis with a TTL. It holds catalog
// data only; nothing in the authentication or authorization path is ever
// written here.
type ProductCache struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

type cachedProduct struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProductCache constructs a Redis-backed product cache.
func NewProductCache(client *goredis.Client, prefix string, ttl time.Duration) *ProductCache {
	if prefix == "" {
		prefix = "shop:product"
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProductCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *ProductCache) key(id string) string {
	return fmt.Sprintf("%s:%s", c.prefix, id)
}

// Get returns the cached product or repository.ErrNotFound on a miss.
func (c *ProductCache) Get(ctx context.Context, id string) (*domain.Product, error) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get cached product: %w", err)
	}

	var entry cachedProduct
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode cached product: %w", err)
	}

	return &domain.Product{
		ID:          entry.ID,
		Name:        entry.Name,
		Description: entry.Description,
		Category:    entry.Category,
		CreatedAt:   entry.CreatedAt,
		UpdatedAt:   entry.UpdatedAt,
	}, nil
}

// Set stores the product under its key with the configured TTL.
func (c *ProductCache) Set(ctx context.Context, product domain.Product) error {
	entry := cachedProduct{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Category:    product.Category,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cached product: %w", err)
	}

	if err := c.client.Set(ctx, c.key(product.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached product: %w", err)
	}

	return nil
}

// Invalidate drops the cached entry after a catalog mutation.
func (c *ProductCache) Invalidate(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("invalidate cached product: %w", err)
	}
	return nil
}

var _ port.ProductCache = (*ProductCache)(nil)
