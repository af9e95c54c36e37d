// Package domain contains supplier purchase orders and their service contract.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusReceived  Status = "received"
	StatusCancelled Status = "cancelled"
)

var (
	ErrNotFound      = errors.New("purchase_order_not_found")
	ErrInvalidStatus = errors.New("purchase_order_status_invalid")
	ErrInvalidAmount = errors.New("purchase_order_amount_invalid")
)

type PurchaseOrder struct {
	ID               snowflake.ID    `gorm:"primaryKey" json:"id"`
	ShopID           snowflake.ID    `gorm:"not null;index" json:"shop_id"`
	SupplierID       *snowflake.ID   `json:"supplier_id,omitempty"`
	PONumber         string          `gorm:"column:po_number;not null" json:"po_number"`
	OrderDate        time.Time       `gorm:"not null" json:"order_date"`
	ExpectedDelivery *time.Time      `json:"expected_delivery,omitempty"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_amount"`
	Status           Status          `gorm:"not null;default:'pending'" json:"status"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"not null" json:"updated_at"`

	SupplierName string `gorm:"->" json:"supplier_name,omitempty"`
}

// TableName sets the database table name.
func (PurchaseOrder) TableName() string { return "purchase_orders" }

type CreatePurchaseOrderRequest struct {
	ShopID           snowflake.ID    `json:"-"`
	SupplierID       *snowflake.ID   `json:"supplier_id"`
	OrderDate        *time.Time      `json:"order_date"`
	ExpectedDelivery *time.Time      `json:"expected_delivery"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Notes            string          `json:"notes"`
}

// UpdatePurchaseOrderRequest leaves nil fields unchanged.
type UpdatePurchaseOrderRequest struct {
	ShopID           snowflake.ID     `json:"-"`
	PurchaseOrderID  snowflake.ID     `json:"-"`
	SupplierID       *snowflake.ID    `json:"supplier_id"`
	OrderDate        *time.Time       `json:"order_date"`
	ExpectedDelivery *time.Time       `json:"expected_delivery"`
	TotalAmount      *decimal.Decimal `json:"total_amount"`
	Status           *Status          `json:"status"`
	Notes            *string          `json:"notes"`
}

type Service interface {
	Create(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrder, error)
	GetByID(ctx context.Context, shopID, id snowflake.ID) (*PurchaseOrder, error)
	List(ctx context.Context, shopID snowflake.ID, search string) ([]PurchaseOrder, error)
	Update(ctx context.Context, req UpdatePurchaseOrderRequest) (*PurchaseOrder, error)
	Delete(ctx context.Context, shopID, id snowflake.ID) error
}
