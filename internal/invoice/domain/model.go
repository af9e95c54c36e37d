// Package domain contains the invoice ledger: invoices, their line items and
// payment events, plus the derived status and overdue rules.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
)

// StatusFor derives invoice status from its money fields. A zero or negative
// balance means fully paid, any payment on a positive balance means partial.
func StatusFor(paid, balance decimal.Decimal) Status {
	switch {
	case balance.LessThanOrEqual(decimal.Zero):
		return StatusPaid
	case paid.IsPositive():
		return StatusPartial
	default:
		return StatusPending
	}
}

// Invoice is a billable transaction, or its reversal when OriginalInvoiceID
// is set. Money fields satisfy total = subtotal + tax - discount and
// balance = total - paid at all times.
type Invoice struct {
	ID                snowflake.ID    `gorm:"primaryKey" json:"id"`
	ShopID            snowflake.ID    `gorm:"not null;index" json:"shop_id"`
	CustomerID        *snowflake.ID   `json:"customer_id,omitempty"`
	InvoiceNumber     string          `gorm:"not null" json:"invoice_number"`
	InvoiceDate       time.Time       `gorm:"not null" json:"invoice_date"`
	DueDate           *time.Time      `json:"due_date,omitempty"`
	Subtotal          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxAmount         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"tax_amount"`
	DiscountAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount_amount"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	PaidAmount        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"paid_amount"`
	BalanceAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"balance_amount"`
	Status            Status          `gorm:"not null;default:'pending'" json:"status"`
	Notes             string          `json:"notes,omitempty"`
	OriginalInvoiceID *snowflake.ID   `json:"original_invoice_id,omitempty"`
	CreatedAt         time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null" json:"updated_at"`

	CustomerName string `gorm:"->" json:"customer_name,omitempty"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// IsReturn reports whether this invoice reverses another one.
func (i Invoice) IsReturn() bool { return i.OriginalInvoiceID != nil }

// IsOverdue reports whether the invoice's due date has passed without full
// payment. Comparison is by calendar day, not instant.
func (i Invoice) IsOverdue(now time.Time) bool {
	if i.DueDate == nil || i.Status == StatusPaid {
		return false
	}
	due := i.DueDate.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	return today.After(dueDay)
}

// DaysOverdue returns whole days past the due date, zero when not overdue.
func (i Invoice) DaysOverdue(now time.Time) int {
	if !i.IsOverdue(now) {
		return 0
	}
	due := i.DueDate.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	return int(today.Sub(dueDay).Hours() / 24)
}

// InvoiceItem is one line of an invoice, immutable after creation. Product
// name and unit are denormalized at time of sale. Return lines carry negative
// quantity and line total with a positive unit price.
type InvoiceItem struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceID   snowflake.ID    `gorm:"not null;index" json:"invoice_id"`
	ProductID   snowflake.ID    `gorm:"not null" json:"product_id"`
	ProductName string          `gorm:"not null" json:"product_name"`
	Unit        string          `gorm:"not null" json:"unit"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }

// InvoicePayment is an append-only payment event against an invoice.
type InvoicePayment struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceID       snowflake.ID    `gorm:"not null;index" json:"invoice_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentMethod   string          `gorm:"not null" json:"payment_method"`
	PaymentDate     time.Time       `gorm:"not null" json:"payment_date"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (InvoicePayment) TableName() string { return "invoice_payments" }

// PaymentSummary is the per-invoice payment statistics view.
type PaymentSummary struct {
	TotalPaid      decimal.Decimal            `json:"total_paid"`
	TotalBalance   decimal.Decimal            `json:"total_balance"`
	PaymentCount   int                        `json:"payment_count"`
	PaymentMethods map[string]decimal.Decimal `json:"payment_methods"`
	IsOverdue      bool                       `json:"is_overdue"`
	DaysOverdue    int                        `json:"days_overdue"`
	Status         Status                     `json:"status"`
}
