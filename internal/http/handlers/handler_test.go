package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/litemall-next/internal/http/response"
	"github.com/litemall-next/internal/models"
	"github.com/litemall-next/internal/provider"
	"github.com/litemall-next/internal/repository"
	"github.com/litemall-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupHandlerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.CartItem{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cartRepo := repository.NewCartRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	h := New(&provider.Container{
		CartService:    service.NewCartService(cartRepo, productRepo, nil, nil, time.Minute),
		ProductService: service.NewProductService(productRepo, nil, nil, time.Minute),
		OrderService:   service.NewOrderService(orderRepo, productRepo, nil, nil),
	})

	r := gin.New()
	api := r.Group("/api/v1")
	api.GET("/products", h.ListProducts)
	api.GET("/products/:id", h.GetProduct)
	api.POST("/products", h.CreateProduct)
	api.POST("/products/:id/reserve", h.ReserveStock)
	api.GET("/carts/:user_id", h.GetCart)
	api.POST("/carts/:user_id/items", h.AddCartItem)
	api.POST("/orders", h.CreateOrder)
	api.GET("/orders/:id", h.GetOrder)
	return r, db
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v body=%s", err, w.Body.String())
	}
	return w, resp
}

func seedHandlerProduct(t *testing.T, db *gorm.DB, name string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:          name,
		Price:         models.NewMoneyFromDecimal(decimal.RequireFromString("9.90")),
		StockQuantity: stock,
		IsActive:      true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product failed: %v", err)
	}
	return product
}

func TestCreateAndGetProduct(t *testing.T) {
	r, _ := setupHandlerTest(t)

	_, resp := doRequest(t, r, http.MethodPost, "/api/v1/products",
		`{"name":"widget","price":"12.50","stock_quantity":8}`)
	if resp.StatusCode != response.CodeOK {
		t.Fatalf("create failed: %+v", resp)
	}

	_, resp = doRequest(t, r, http.MethodGet, "/api/v1/products/1", "")
	if resp.StatusCode != response.CodeOK {
		t.Fatalf("get failed: %+v", resp)
	}
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected data shape: %T", resp.Data)
	}
	if data["name"] != "widget" {
		t.Fatalf("unexpected name: %v", data["name"])
	}
	if data["price"] != "12.50" {
		t.Fatalf("expected price 12.50, got %v", data["price"])
	}
}

func TestGetProductNotFound(t *testing.T) {
	r, _ := setupHandlerTest(t)

	w, resp := doRequest(t, r, http.MethodGet, "/api/v1/products/999", "")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected http status %d", w.Code)
	}
	if resp.StatusCode != response.CodeNotFound {
		t.Fatalf("expected business code 404, got %d", resp.StatusCode)
	}
}

func TestReserveStockConflict(t *testing.T) {
	r, db := setupHandlerTest(t)
	product := seedHandlerProduct(t, db, "scarce", 1)

	_, resp := doRequest(t, r, http.MethodPost,
		fmt.Sprintf("/api/v1/products/%d/reserve", product.ID),
		`{"quantity":5}`)
	if resp.StatusCode != response.CodeConflict {
		t.Fatalf("expected conflict for insufficient stock, got %d", resp.StatusCode)
	}

	var reloaded models.Product
	if err := db.First(&reloaded, product.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.StockQuantity != 1 {
		t.Fatalf("stock must be unchanged, got %d", reloaded.StockQuantity)
	}
}

func TestCartAddAndList(t *testing.T) {
	r, db := setupHandlerTest(t)
	product := seedHandlerProduct(t, db, "widget", 10)

	body := fmt.Sprintf(`{"product_id":%d,"quantity":2}`, product.ID)
	_, resp := doRequest(t, r, http.MethodPost, "/api/v1/carts/u1/items", body)
	if resp.StatusCode != response.CodeOK {
		t.Fatalf("add cart item failed: %+v", resp)
	}

	_, resp = doRequest(t, r, http.MethodGet, "/api/v1/carts/u1", "")
	if resp.StatusCode != response.CodeOK {
		t.Fatalf("get cart failed: %+v", resp)
	}
	data := resp.Data.(map[string]interface{})
	items := data["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 cart item, got %d", len(items))
	}
}

func TestCreateOrderEndToEnd(t *testing.T) {
	r, db := setupHandlerTest(t)
	product := seedHandlerProduct(t, db, "widget", 10)

	body := fmt.Sprintf(`{"user_id":"u1","items":[{"product_id":%d,"quantity":3}]}`, product.ID)
	_, resp := doRequest(t, r, http.MethodPost, "/api/v1/orders", body)
	if resp.StatusCode != response.CodeOK {
		t.Fatalf("create order failed: %+v", resp)
	}
	data := resp.Data.(map[string]interface{})
	if data["status"] != "pending" {
		t.Fatalf("expected pending order, got %v", data["status"])
	}
	if data["total_amount"] != "29.70" {
		t.Fatalf("expected total 29.70, got %v", data["total_amount"])
	}

	var reloaded models.Product
	if err := db.First(&reloaded, product.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.StockQuantity != 7 {
		t.Fatalf("expected stock 7, got %d", reloaded.StockQuantity)
	}
}

func TestCreateOrderBadBody(t *testing.T) {
	r, _ := setupHandlerTest(t)

	_, resp := doRequest(t, r, http.MethodPost, "/api/v1/orders", `{"items":[]}`)
	if resp.StatusCode != response.CodeBadRequest {
		t.Fatalf("expected bad request, got %d", resp.StatusCode)
	}
}
