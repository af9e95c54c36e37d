// Package domain contains shop operating expenses and their service contract.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("expense_not_found")
	ErrInvalidTitle  = errors.New("expense_title_required")
	ErrInvalidAmount = errors.New("expense_amount_invalid")
)

type Expense struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	ShopID        snowflake.ID    `gorm:"not null;index" json:"shop_id"`
	Title         string          `gorm:"not null" json:"title"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Category      string          `json:"category,omitempty"`
	SupplierID    *snowflake.ID   `json:"supplier_id,omitempty"`
	ExpenseDate   time.Time       `gorm:"not null" json:"expense_date"`
	Description   string          `json:"description,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Expense) TableName() string { return "expenses" }

type CreateExpenseRequest struct {
	ShopID        snowflake.ID    `json:"-"`
	Title         string          `json:"title" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category"`
	SupplierID    *snowflake.ID   `json:"supplier_id"`
	ExpenseDate   *time.Time      `json:"expense_date"`
	Description   string          `json:"description"`
	PaymentMethod string          `json:"payment_method"`
}

// UpdateExpenseRequest leaves nil fields unchanged.
type UpdateExpenseRequest struct {
	ShopID        snowflake.ID     `json:"-"`
	ExpenseID     snowflake.ID     `json:"-"`
	Title         *string          `json:"title"`
	Amount        *decimal.Decimal `json:"amount"`
	Category      *string          `json:"category"`
	SupplierID    *snowflake.ID    `json:"supplier_id"`
	ExpenseDate   *time.Time       `json:"expense_date"`
	Description   *string          `json:"description"`
	PaymentMethod *string          `json:"payment_method"`
}

type Service interface {
	Create(ctx context.Context, req CreateExpenseRequest) (*Expense, error)
	GetByID(ctx context.Context, shopID, id snowflake.ID) (*Expense, error)
	List(ctx context.Context, shopID snowflake.ID, search string) ([]Expense, error)
	Update(ctx context.Context, req UpdateExpenseRequest) (*Expense, error)
	Delete(ctx context.Context, shopID, id snowflake.ID) error
}
