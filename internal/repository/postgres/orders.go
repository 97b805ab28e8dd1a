package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/commercekit/shop-platform/internal/core/domain"
	"github.com/commercekit/shop-platform/internal/core/port"
	"github.com/commercekit/shop-platform/internal/repository"
)

// OrderRepository implements port.OrderRepository using PostgreSQL.
type OrderRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewOrderRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewOrderRepository(exec pgExecutor) *OrderRepository {
	return &OrderRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new order row. Username is written once here and never
// touched by Update.
func (r *OrderRepository) Create(ctx context.Context, order domain.Order) error {
	stmt, args, err := r.builder.Insert("shop.orders").
		Columns("id", "username", "product_ids", "created_at", "updated_at").
		Values(order.ID, order.Username, order.ProductIDs, order.CreatedAt, order.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert order sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

// GetByID retrieves an order by identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	stmt, args, err := r.builder.
		Select("id", "username", "product_ids", "created_at", "updated_at").
		From("shop.orders").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select order sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var order domain.Order
	if err := row.Scan(&order.ID, &order.Username, &order.ProductIDs, &order.CreatedAt, &order.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	return &order, nil
}

// Update replaces the order's line items. The owner column is deliberately
// absent from the statement.
func (r *OrderRepository) Update(ctx context.Context, order domain.Order) error {
	stmt, args, err := r.builder.Update("shop.orders").
		Set("product_ids", order.ProductIDs).
		Set("updated_at", order.UpdatedAt).
		Where(squirrel.Eq{"id": order.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update order sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes an order row.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("shop.orders").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete order sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// List returns all orders, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	stmt, args, err := r.builder.
		Select("id", "username", "product_ids", "created_at", "updated_at").
		From("shop.orders").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list orders sql: %w", err)
	}

	return r.queryOrders(ctx, stmt, args)
}

// ListByUsername returns the orders owned by the given username, newest first.
func (r *OrderRepository) ListByUsername(ctx context.Context, username string) ([]domain.Order, error) {
	stmt, args, err := r.builder.
		Select("id", "username", "product_ids", "created_at", "updated_at").
		From("shop.orders").
		Where(squirrel.Eq{"username": username}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list orders by username sql: %w", err)
	}

	return r.queryOrders(ctx, stmt, args)
}

// OwnerOf fetches only the owner column for the authorization layer.
func (r *OrderRepository) OwnerOf(ctx context.Context, id string) (string, error) {
	stmt, args, err := r.builder.
		Select("username").
		From("shop.orders").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build select order owner sql: %w", err)
	}

	var owner string
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("scan order owner: %w", err)
	}

	return owner, nil
}

func (r *OrderRepository) queryOrders(ctx context.Context, stmt string, args []any) ([]domain.Order, error) {
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.Username, &order.ProductIDs, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, nil
}

var _ port.OrderRepository = (*OrderRepository)(nil)
