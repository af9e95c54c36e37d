package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/shopstack/shopbill/internal/clock"
	"github.com/shopstack/shopbill/internal/product/domain"
	productrepo "github.com/shopstack/shopbill/internal/product/repository"
	productservice "github.com/shopstack/shopbill/internal/product/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE products (
			id BIGINT PRIMARY KEY,
			shop_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			category TEXT,
			brand TEXT,
			description TEXT,
			unit TEXT NOT NULL,
			price DECIMAL(12,2) NOT NULL,
			stock_quantity INTEGER NOT NULL DEFAULT 0,
			min_stock_level INTEGER NOT NULL DEFAULT 0,
			barcode TEXT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

type fixture struct {
	svc  domain.Service
	db   *gorm.DB
	shop snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := setupTestDB(t)
	node, err := snowflake.NewNode(9)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	fake := clock.NewFakeClock(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))

	svc := productservice.New(productservice.Params{
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  productrepo.Provide(db),
	})

	return &fixture{svc: svc, db: db, shop: node.Generate()}
}

func (f *fixture) create(t *testing.T, name string, stock, minLevel int) *domain.Product {
	t.Helper()
	product, err := f.svc.Create(context.Background(), domain.CreateProductRequest{
		ShopID:        f.shop,
		Name:          name,
		Unit:          "pcs",
		Price:         decimal.NewFromInt(10),
		StockQuantity: stock,
		MinStockLevel: minLevel,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, domain.CreateProductRequest{
		ShopID: f.shop,
		Name:   "  ",
		Unit:   "pcs",
	}); !errors.Is(err, domain.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}

	if _, err := f.svc.Create(ctx, domain.CreateProductRequest{
		ShopID: f.shop,
		Name:   "Sugar",
	}); !errors.Is(err, domain.ErrInvalidUnit) {
		t.Fatalf("expected ErrInvalidUnit, got %v", err)
	}

	if _, err := f.svc.Create(ctx, domain.CreateProductRequest{
		ShopID: f.shop,
		Name:   "Sugar",
		Unit:   "kg",
		Price:  decimal.NewFromInt(-1),
	}); !errors.Is(err, domain.ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
}

func TestUpdateStockClampedAtZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product := f.create(t, "Rice", 5, 2)

	updated, err := f.svc.UpdateStock(ctx, f.shop, product.ID, -3)
	if err != nil {
		t.Fatalf("update stock: %v", err)
	}
	if updated.StockQuantity != 2 {
		t.Fatalf("stock = %d, want 2", updated.StockQuantity)
	}

	updated, err = f.svc.UpdateStock(ctx, f.shop, product.ID, -10)
	if err != nil {
		t.Fatalf("update stock: %v", err)
	}
	if updated.StockQuantity != 0 {
		t.Fatalf("stock = %d, want 0 after clamping", updated.StockQuantity)
	}

	updated, err = f.svc.UpdateStock(ctx, f.shop, product.ID, 7)
	if err != nil {
		t.Fatalf("update stock: %v", err)
	}
	if updated.StockQuantity != 7 {
		t.Fatalf("stock = %d, want 7", updated.StockQuantity)
	}
}

func TestLowStockListsOnlyAtOrBelowMinimum(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	low := f.create(t, "Salt", 1, 5)
	f.create(t, "Sugar", 50, 5)
	edge := f.create(t, "Tea", 5, 5)

	items, err := f.svc.LowStock(ctx, f.shop)
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d low stock products, want 2", len(items))
	}

	found := map[snowflake.ID]bool{}
	for _, item := range items {
		found[item.ID] = true
	}
	if !found[low.ID] || !found[edge.ID] {
		t.Fatalf("low stock list missing expected products: %v", found)
	}
}

func TestSearchByBarcodeSkipsInactive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product, err := f.svc.Create(ctx, domain.CreateProductRequest{
		ShopID:  f.shop,
		Name:    "Soap",
		Unit:    "pcs",
		Price:   decimal.NewFromInt(25),
		Barcode: "8901234567890",
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	got, err := f.svc.SearchByBarcode(ctx, f.shop, "8901234567890")
	if err != nil {
		t.Fatalf("barcode search: %v", err)
	}
	if got.ID != product.ID {
		t.Fatalf("found %v, want %v", got.ID, product.ID)
	}

	inactive := false
	if _, err := f.svc.Update(ctx, domain.UpdateProductRequest{
		ShopID:    f.shop,
		ProductID: product.ID,
		IsActive:  &inactive,
	}); err != nil {
		t.Fatalf("deactivate product: %v", err)
	}

	if _, err := f.svc.SearchByBarcode(ctx, f.shop, "8901234567890"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for inactive product, got %v", err)
	}
}
