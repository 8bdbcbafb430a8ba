package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/litemall-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupProductRepositoryTest(t *testing.T) (*GormProductRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:product_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewProductRepository(db), db
}

func mustCreateProduct(t *testing.T, repo *GormProductRepository, name string, stock int, active bool) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:          name,
		Price:         models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		StockQuantity: stock,
		IsActive:      active,
	}
	if err := repo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestProductRepositoryDecrementStock(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)
	product := mustCreateProduct(t, repo, "widget", 5, true)

	rows, err := repo.DecrementStock(product.ID, 3)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 row affected, got %d", rows)
	}

	reloaded, err := repo.GetByID(product.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.StockQuantity != 2 {
		t.Fatalf("expected stock 2, got %d", reloaded.StockQuantity)
	}
}

func TestProductRepositoryDecrementStockInsufficient(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)
	product := mustCreateProduct(t, repo, "widget", 2, true)

	rows, err := repo.DecrementStock(product.ID, 3)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected no rows affected, got %d", rows)
	}

	reloaded, err := repo.GetByID(product.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.StockQuantity != 2 {
		t.Fatalf("stock changed on refused decrement: %d", reloaded.StockQuantity)
	}
}

func TestProductRepositoryDecrementStockExactBoundary(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)
	product := mustCreateProduct(t, repo, "widget", 3, true)

	rows, err := repo.DecrementStock(product.ID, 3)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected exact-stock decrement to succeed, got %d rows", rows)
	}

	reloaded, err := repo.GetByID(product.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.StockQuantity != 0 {
		t.Fatalf("expected stock 0, got %d", reloaded.StockQuantity)
	}
}

func TestProductRepositoryDecrementStockMissingProduct(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)

	rows, err := repo.DecrementStock(9999, 1)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected no rows for missing product, got %d", rows)
	}
}

func TestProductRepositoryIncrementStock(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)
	product := mustCreateProduct(t, repo, "widget", 1, true)

	rows, err := repo.IncrementStock(product.ID, 4)
	if err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 row affected, got %d", rows)
	}

	reloaded, err := repo.GetByID(product.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.StockQuantity != 5 {
		t.Fatalf("expected stock 5, got %d", reloaded.StockQuantity)
	}
}

func TestProductRepositoryListFiltersActive(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)
	mustCreateProduct(t, repo, "active widget", 1, true)
	mustCreateProduct(t, repo, "retired widget", 1, false)

	products, total, err := repo.List(ProductListFilter{OnlyActive: true})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(products) != 1 {
		t.Fatalf("expected a single active product, got total=%d len=%d", total, len(products))
	}
	if products[0].Name != "active widget" {
		t.Fatalf("unexpected product: %s", products[0].Name)
	}
}

func TestProductRepositoryListSearch(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)
	mustCreateProduct(t, repo, "wireless earphones", 1, true)
	mustCreateProduct(t, repo, "mechanical keyboard", 1, true)

	products, total, err := repo.List(ProductListFilter{Search: "keyboard", OnlyActive: true})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(products) != 1 {
		t.Fatalf("expected one match, got total=%d len=%d", total, len(products))
	}
}
