package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/shopstack/shopbill/pkg/db/pagination"
)

type CreateProductRequest struct {
	ShopID        snowflake.ID    `json:"-"`
	Name          string          `json:"name" binding:"required"`
	Category      string          `json:"category"`
	Brand         string          `json:"brand"`
	Description   string          `json:"description"`
	Unit          string          `json:"unit" binding:"required"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	MinStockLevel int             `json:"min_stock_level"`
	Barcode       string          `json:"barcode"`
}

// UpdateProductRequest leaves nil fields unchanged.
type UpdateProductRequest struct {
	ShopID        snowflake.ID     `json:"-"`
	ProductID     snowflake.ID     `json:"-"`
	Name          *string          `json:"name"`
	Category      *string          `json:"category"`
	Brand         *string          `json:"brand"`
	Description   *string          `json:"description"`
	Unit          *string          `json:"unit"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stock_quantity"`
	MinStockLevel *int             `json:"min_stock_level"`
	Barcode       *string          `json:"barcode"`
	IsActive      *bool            `json:"is_active"`
}

type ListProductRequest struct {
	ShopID     snowflake.ID `form:"-"`
	Search     string       `form:"search"`
	Category   string       `form:"category"`
	ActiveOnly bool         `form:"-"`
	Page       int          `form:"page"`
	Limit      int          `form:"limit"`
}

type ListProductResponse struct {
	PageInfo pagination.PageInfo `json:"page_info"`
	Products []Product           `json:"products"`
}

type Service interface {
	Create(ctx context.Context, req CreateProductRequest) (*Product, error)
	GetByID(ctx context.Context, shopID, id snowflake.ID) (*Product, error)
	List(ctx context.Context, req ListProductRequest) (ListProductResponse, error)
	Categories(ctx context.Context, shopID snowflake.ID) ([]string, error)
	LowStock(ctx context.Context, shopID snowflake.ID) ([]Product, error)
	SearchByBarcode(ctx context.Context, shopID snowflake.ID, barcode string) (*Product, error)
	Update(ctx context.Context, req UpdateProductRequest) (*Product, error)
	// UpdateStock applies a signed quantity change, clamping the result at zero.
	UpdateStock(ctx context.Context, shopID, id snowflake.ID, change int) (*Product, error)
	Delete(ctx context.Context, shopID, id snowflake.ID) error
}
