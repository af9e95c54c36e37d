package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/shopstack/shopbill/pkg/db/pagination"
)

type CreateCustomerRequest struct {
	ShopID  snowflake.ID `json:"-"`
	Name    string       `json:"name" binding:"required"`
	Phone   string       `json:"phone"`
	Email   string       `json:"email"`
	Address string       `json:"address"`
}

// UpdateCustomerRequest leaves nil fields unchanged.
type UpdateCustomerRequest struct {
	ShopID     snowflake.ID `json:"-"`
	CustomerID snowflake.ID `json:"-"`
	Name       *string      `json:"name"`
	Phone      *string      `json:"phone"`
	Email      *string      `json:"email"`
	Address    *string      `json:"address"`
}

type ListCustomerRequest struct {
	ShopID snowflake.ID `form:"-"`
	Search string       `form:"search"`
	Page   int          `form:"page"`
	Limit  int          `form:"limit"`
}

type ListCustomerResponse struct {
	PageInfo  pagination.PageInfo `json:"page_info"`
	Customers []Customer          `json:"customers"`
}

// Stats aggregates a customer's invoice history.
type Stats struct {
	InvoiceCount       int64           `json:"invoice_count"`
	TotalPurchases     decimal.Decimal `json:"total_purchases"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
}

type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (*Customer, error)
	GetByID(ctx context.Context, shopID, id snowflake.ID) (*Customer, error)
	List(ctx context.Context, req ListCustomerRequest) (ListCustomerResponse, error)
	SearchByPhone(ctx context.Context, shopID snowflake.ID, phone string) ([]Customer, error)
	Update(ctx context.Context, req UpdateCustomerRequest) (*Customer, error)
	Delete(ctx context.Context, shopID, id snowflake.ID) error
	Stats(ctx context.Context, shopID, id snowflake.ID) (*Stats, error)
}
