// Package domain contains tenant records and dashboard aggregates.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Shop is the tenant; every business record is partitioned by its ID.
type Shop struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID           snowflake.ID `gorm:"not null;index" json:"user_id"`
	ShopName         string       `gorm:"not null" json:"shop_name"`
	OwnerName        string       `gorm:"not null" json:"owner_name"`
	Phone            string       `json:"phone,omitempty"`
	Address          string       `json:"address,omitempty"`
	SubscriptionPlan string       `gorm:"not null;default:'basic'" json:"subscription_plan"`
	IsActive         bool         `gorm:"not null;default:false" json:"is_active"`
	CreatedAt        time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Shop) TableName() string { return "shops" }

// DashboardStats is the read-only aggregate view for the shop home screen.
type DashboardStats struct {
	TotalCustomers     int64           `json:"total_customers"`
	TotalProducts      int64           `json:"total_products"`
	TotalInvoices      int64           `json:"total_invoices"`
	TodaySales         decimal.Decimal `json:"today_sales"`
	MonthSales         decimal.Decimal `json:"month_sales"`
	MonthInvoiceCount  int64           `json:"month_invoice_count"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	PendingInvoices    int64           `json:"pending_invoices"`
	LowStockProducts   []LowStockItem  `json:"low_stock_products"`
	RecentInvoices     []RecentInvoice `json:"recent_invoices"`
	ReceivableAging    []AgingSlice    `json:"receivable_aging"`
}

type LowStockItem struct {
	ID            snowflake.ID `json:"id"`
	Name          string       `json:"name"`
	Category      string       `json:"category"`
	StockQuantity int          `json:"stock_quantity"`
	MinStockLevel int          `json:"min_stock_level"`
	Unit          string       `json:"unit"`
}

type RecentInvoice struct {
	ID            snowflake.ID    `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        string          `json:"status"`
	CustomerName  string          `json:"customer_name,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// AgingSlice buckets outstanding balances by days overdue, per the billing
// config aging buckets.
type AgingSlice struct {
	Label       string          `json:"label"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Invoices    int64           `json:"invoices"`
}
