package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/commercekit/shop-platform/internal/core/domain"
	"github.com/commercekit/shop-platform/internal/repository"
)

func newProductMock(t *testing.T) (pgxmock.PgxPoolIface, *ProductRepository) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)

	return mock, NewProductRepository(mock)
}

func TestProductRepository_Create(t *testing.T) {
	mock, repo := newProductMock(t)

	now := time.Now().UTC()
	product := domain.Product{
		ID:          "prod-1",
		Name:        "Walnut Desk",
		Description: "Solid walnut writing desk",
		Category:    "furniture",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	mock.ExpectExec(`INSERT INTO shop\.products`).
		WithArgs(product.ID, product.Name, product.Description, product.Category, now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), product); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProductRepository_GetByID(t *testing.T) {
	mock, repo := newProductMock(t)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "name", "description", "category", "created_at", "updated_at"}).
		AddRow("prod-1", "Walnut Desk", "Solid walnut writing desk", "furniture", now, now)

	mock.ExpectQuery(`SELECT .*FROM shop\.products`).WithArgs("prod-1").WillReturnRows(rows)

	product, err := repo.GetByID(context.Background(), "prod-1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if product.Name != "Walnut Desk" {
		t.Fatalf("unexpected name: %s", product.Name)
	}
}

func TestProductRepository_GetByIDNotFound(t *testing.T) {
	mock, repo := newProductMock(t)

	rows := pgxmock.NewRows([]string{"id", "name", "description", "category", "created_at", "updated_at"})
	mock.ExpectQuery(`SELECT .*FROM shop\.products`).WithArgs("missing").WillReturnRows(rows)

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProductRepository_UpdateNotFound(t *testing.T) {
	mock, repo := newProductMock(t)

	mock.ExpectExec(`UPDATE shop\.products`).
		WithArgs("Name", "Desc", "cat", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	product := domain.Product{ID: "missing", Name: "Name", Description: "Desc", Category: "cat", UpdatedAt: time.Now().UTC()}
	if err := repo.Update(context.Background(), product); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProductRepository_Delete(t *testing.T) {
	mock, repo := newProductMock(t)

	mock.ExpectExec(`DELETE FROM shop\.products`).
		WithArgs("prod-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	if err := repo.Delete(context.Background(), "prod-1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
}

func TestProductRepository_SearchMatchesAllTextFields(t *testing.T) {
	mock, repo := newProductMock(t)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "name", "description", "category", "created_at", "updated_at"}).
		AddRow("prod-1", "Walnut Desk", "Solid walnut writing desk", "furniture", now, now)

	mock.ExpectQuery(`SELECT .*FROM shop\.products WHERE \(name ILIKE \$1 OR description ILIKE \$2 OR category ILIKE \$3\)`).
		WithArgs("%walnut%", "%walnut%", "%walnut%").
		WillReturnRows(rows)

	products, err := repo.Search(context.Background(), "walnut")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProductRepository_ListEmpty(t *testing.T) {
	mock, repo := newProductMock(t)

	rows := pgxmock.NewRows([]string{"id", "name", "description", "category", "created_at", "updated_at"})
	mock.ExpectQuery(`SELECT .*FROM shop\.products`).WillReturnRows(rows)

	products, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("expected empty catalog, got %d entries", len(products))
	}
}
