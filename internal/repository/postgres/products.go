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

// ProductRepository implements port.ProductRepository using PostgreSQL.
type ProductRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewProductRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewProductRepository(exec pgExecutor) *ProductRepository {
	return &ProductRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new product row.
func (r *ProductRepository) Create(ctx context.Context, product domain.Product) error {
	stmt, args, err := r.builder.Insert("shop.products").
		Columns("id", "name", "description", "category", "created_at", "updated_at").
		Values(product.ID, product.Name, product.Description, product.Category, product.CreatedAt, product.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert product sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	stmt, args, err := r.builder.
		Select("id", "name", "description", "category", "created_at", "updated_at").
		From("shop.products").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select product sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var product domain.Product
	if err := row.Scan(&product.ID, &product.Name, &product.Description, &product.Category, &product.CreatedAt, &product.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	return &product, nil
}

// Update modifies an existing product's fields.
func (r *ProductRepository) Update(ctx context.Context, product domain.Product) error {
	stmt, args, err := r.builder.Update("shop.products").
		Set("name", product.Name).
		Set("description", product.Description).
		Set("category", product.Category).
		Set("updated_at", product.UpdatedAt).
		Where(squirrel.Eq{"id": product.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update product sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a product row.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("shop.products").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete product sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// List returns the full catalog ordered by name.
func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	stmt, args, err := r.builder.
		Select("id", "name", "description", "category", "created_at", "updated_at").
		From("shop.products").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list products sql: %w", err)
	}

	return r.queryProducts(ctx, stmt, args)
}

// Search matches the query case-insensitively against name, description,
// and category.
func (r *ProductRepository) Search(ctx context.Context, query string) ([]domain.Product, error) {
	pattern := "%" + query + "%"

	stmt, args, err := r.builder.
		Select("id", "name", "description", "category", "created_at", "updated_at").
		From("shop.products").
		Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"description": pattern},
			squirrel.ILike{"category": pattern},
		}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build search products sql: %w", err)
	}

	return r.queryProducts(ctx, stmt, args)
}

func (r *ProductRepository) queryProducts(ctx context.Context, stmt string, args []any) ([]domain.Product, error) {
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(&product.ID, &product.Name, &product.Description, &product.Category, &product.CreatedAt, &product.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

var _ port.ProductRepository = (*ProductRepository)(nil)
