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

func setupCartRepositoryTest(t *testing.T) (*GormCartRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:cart_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.CartItem{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewCartRepository(db), db
}

func TestCartRepositoryAddQuantityMergesSameProduct(t *testing.T) {
	repo, db := setupCartRepositoryTest(t)

	first := models.CartItem{
		UserID:    "user-1",
		ProductID: 10,
		Quantity:  2,
		UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
	}
	if err := repo.AddQuantity(&first); err != nil {
		t.Fatalf("add first failed: %v", err)
	}

	second := models.CartItem{
		UserID:    "user-1",
		ProductID: 10,
		Quantity:  3,
		UnitPrice: models.NewMoneyFromDecimal(decimal.RequireFromString("5.50")),
	}
	if err := repo.AddQuantity(&second); err != nil {
		t.Fatalf("add second failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", "user-1").Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected single merged row, got %d", count)
	}
	if second.ID != first.ID {
		t.Fatalf("expected merge into row %d, got %d", first.ID, second.ID)
	}
	if second.Quantity != 5 {
		t.Fatalf("expected quantity 5 after merge, got %d", second.Quantity)
	}
	// 单价更新为最近一次加购时的快照
	if !second.UnitPrice.Equal(decimal.RequireFromString("5.50")) {
		t.Fatalf("expected unit price 5.50, got %s", second.UnitPrice.String())
	}
}

func TestCartRepositoryAddQuantityKeepsUsersSeparate(t *testing.T) {
	repo, _ := setupCartRepositoryTest(t)

	a := models.CartItem{UserID: "user-a", ProductID: 7, Quantity: 1}
	b := models.CartItem{UserID: "user-b", ProductID: 7, Quantity: 1}
	if err := repo.AddQuantity(&a); err != nil {
		t.Fatalf("add for user-a failed: %v", err)
	}
	if err := repo.AddQuantity(&b); err != nil {
		t.Fatalf("add for user-b failed: %v", err)
	}
	if a.ID == b.ID {
		t.Fatalf("expected separate rows per user")
	}
}

func TestCartRepositoryClearByUser(t *testing.T) {
	repo, _ := setupCartRepositoryTest(t)

	for productID := uint(1); productID <= 3; productID++ {
		item := models.CartItem{UserID: "user-1", ProductID: productID, Quantity: 1}
		if err := repo.AddQuantity(&item); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}
	other := models.CartItem{UserID: "user-2", ProductID: 1, Quantity: 1}
	if err := repo.AddQuantity(&other); err != nil {
		t.Fatalf("add other failed: %v", err)
	}

	rows, err := repo.ClearByUser("user-1")
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if rows != 3 {
		t.Fatalf("expected 3 rows removed, got %d", rows)
	}

	remaining, err := repo.ListByUser("user-2")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected user-2 cart untouched, got %d items", len(remaining))
	}
}

func TestCartRepositoryDeleteByProduct(t *testing.T) {
	repo, _ := setupCartRepositoryTest(t)

	users := []string{"u1", "u2", "u3"}
	for _, user := range users {
		item := models.CartItem{UserID: user, ProductID: 42, Quantity: 1}
		if err := repo.AddQuantity(&item); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}
	keep := models.CartItem{UserID: "u1", ProductID: 43, Quantity: 1}
	if err := repo.AddQuantity(&keep); err != nil {
		t.Fatalf("add keep failed: %v", err)
	}

	holders, err := repo.ListUserIDsByProduct(42)
	if err != nil {
		t.Fatalf("list holders failed: %v", err)
	}
	if len(holders) != 3 {
		t.Fatalf("expected 3 holders, got %d", len(holders))
	}

	rows, err := repo.DeleteByProduct(42)
	if err != nil {
		t.Fatalf("delete by product failed: %v", err)
	}
	if rows != 3 {
		t.Fatalf("expected 3 rows removed, got %d", rows)
	}

	left, err := repo.ListByUser("u1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(left) != 1 || left[0].ProductID != 43 {
		t.Fatalf("expected only product 43 left for u1, got %+v", left)
	}
}
