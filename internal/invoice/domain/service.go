package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/shopstack/shopbill/pkg/db/pagination"
)

// LineItem is one requested sale line. Quantity must be positive.
type LineItem struct {
	ProductID snowflake.ID    `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// ReturnItem is one requested return line. Quantity is the positive amount
// being returned; the unit price values the refund and may differ from the
// original sale price.
type ReturnItem struct {
	ProductID snowflake.ID    `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type CreateInvoiceRequest struct {
	ShopID         snowflake.ID    `json:"-"`
	CustomerID     *snowflake.ID   `json:"customer_id"`
	InvoiceNumber  string          `json:"invoice_number"`
	InvoiceDate    *time.Time      `json:"invoice_date"`
	DueDate        *time.Time      `json:"due_date"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Notes          string          `json:"notes"`

	InitialPayment  decimal.Decimal `json:"initial_payment"`
	PaymentMethod   string          `json:"payment_method"`
	PaymentDate     *time.Time      `json:"payment_date"`
	ReferenceNumber string          `json:"reference_number"`
	PaymentNotes    string          `json:"payment_notes"`

	Items []LineItem `json:"items" binding:"required"`
}

type AddPaymentRequest struct {
	ShopID          snowflake.ID    `json:"-"`
	InvoiceID       snowflake.ID    `json:"-"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   string          `json:"payment_method"`
	PaymentDate     *time.Time      `json:"payment_date"`
	ReferenceNumber string          `json:"reference_number"`
	Notes           string          `json:"notes"`
}

type CreateReturnRequest struct {
	ShopID            snowflake.ID    `json:"-"`
	OriginalInvoiceID snowflake.ID    `json:"-"`
	ReturnDate        *time.Time      `json:"return_date"`
	DueDate           *time.Time      `json:"due_date"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	Notes             string          `json:"notes"`

	Items []ReturnItem `json:"items" binding:"required"`
}

type ListInvoiceRequest struct {
	ShopID snowflake.ID `form:"-"`
	Status string       `form:"status"`
	Search string       `form:"search"`
	Page   int          `form:"page"`
	Limit  int          `form:"limit"`
}

type ListInvoiceResponse struct {
	PageInfo pagination.PageInfo `json:"page_info"`
	Invoices []Invoice           `json:"invoices"`
}

type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error)
	GetByID(ctx context.Context, shopID, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	ListByCustomer(ctx context.Context, shopID, customerID snowflake.ID) ([]Invoice, error)
	Items(ctx context.Context, shopID, invoiceID snowflake.ID) ([]InvoiceItem, error)
	Payments(ctx context.Context, shopID, invoiceID snowflake.ID) ([]InvoicePayment, error)

	AddPayment(ctx context.Context, req AddPaymentRequest) (*Invoice, error)
	// CanAddPayment is the advisory mirror of AddPayment's validation; it
	// never mutates anything.
	CanAddPayment(ctx context.Context, shopID, invoiceID snowflake.ID, amount decimal.Decimal) (bool, string, error)
	PaymentSummary(ctx context.Context, shopID, invoiceID snowflake.ID) (*PaymentSummary, error)

	CreateReturn(ctx context.Context, req CreateReturnRequest) (*Invoice, error)
	ReturnInvoices(ctx context.Context, shopID, invoiceID snowflake.ID) ([]Invoice, error)
	TotalReturns(ctx context.Context, shopID, invoiceID snowflake.ID) (decimal.Decimal, error)
	NetAmount(ctx context.Context, shopID, invoiceID snowflake.ID) (decimal.Decimal, error)

	Delete(ctx context.Context, shopID, invoiceID snowflake.ID) error
}
