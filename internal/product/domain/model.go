// Package domain contains the catalog product record and its service contract.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	ShopID        snowflake.ID    `gorm:"not null;index" json:"shop_id"`
	Name          string          `gorm:"not null" json:"name"`
	Category      string          `json:"category,omitempty"`
	Brand         string          `json:"brand,omitempty"`
	Description   string          `json:"description,omitempty"`
	Unit          string          `gorm:"not null" json:"unit"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	StockQuantity int             `gorm:"not null;default:0" json:"stock_quantity"`
	MinStockLevel int             `gorm:"not null;default:0" json:"min_stock_level"`
	Barcode       string          `json:"barcode,omitempty"`
	IsActive      bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "products" }

// IsLowStock reports whether stock has fallen to the reorder threshold.
func (p Product) IsLowStock() bool { return p.StockQuantity <= p.MinStockLevel }
