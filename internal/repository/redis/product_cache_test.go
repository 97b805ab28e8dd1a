package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/commercekit/shop-platform/internal/core/domain"
	"github.com/commercekit/shop-platform/internal/repository"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func sampleProduct() domain.Product {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return domain.Product{
		ID:          "prod-1",
		Name:        "walnut desk",
		Description: "solid walnut standing desk",
		Category:    "furniture",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestProductCache_SetAndGet(t *testing.T) {
	client, server := newTestRedis(t)
	cache := NewProductCache(client, "shop:product", 5*time.Minute)

	ctx := context.Background()
	product := sampleProduct()

	if err := cache.Set(ctx, product); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	got, err := cache.Get(ctx, product.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Name != product.Name || got.Category != product.Category {
		t.Fatalf("cached product mismatch: %+v", got)
	}
	if !got.CreatedAt.Equal(product.CreatedAt) {
		t.Fatalf("expected created_at %v, got %v", product.CreatedAt, got.CreatedAt)
	}

	remaining := server.TTL("shop:product:prod-1")
	if remaining <= 0 || remaining > 5*time.Minute {
		t.Fatalf("expected ttl within (0, 5m], got %v", remaining)
	}
}

func TestProductCache_GetMissIsNotFound(t *testing.T) {
	client, _ := newTestRedis(t)
	cache := NewProductCache(client, "shop:product", 5*time.Minute)

	_, err := cache.Get(context.Background(), "absent")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProductCache_Invalidate(t *testing.T) {
	client, _ := newTestRedis(t)
	cache := NewProductCache(client, "shop:product", 5*time.Minute)

	ctx := context.Background()
	product := sampleProduct()

	if err := cache.Set(ctx, product); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := cache.Invalidate(ctx, product.ID); err != nil {
		t.Fatalf("Invalidate returned error: %v", err)
	}

	if _, err := cache.Get(ctx, product.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after invalidation, got %v", err)
	}
}

func TestProductCache_EntryExpires(t *testing.T) {
	client, server := newTestRedis(t)
	cache := NewProductCache(client, "shop:product", time.Minute)

	ctx := context.Background()
	if err := cache.Set(ctx, sampleProduct()); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	server.FastForward(2 * time.Minute)

	if _, err := cache.Get(ctx, "prod-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after ttl elapsed, got %v", err)
	}
}
