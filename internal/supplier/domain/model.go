// Package domain contains the supplier record and its service contract.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound    = errors.New("supplier_not_found")
	ErrInvalidName = errors.New("supplier_name_required")
)

type Supplier struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	ShopID        snowflake.ID `gorm:"not null;index" json:"shop_id"`
	Name          string       `gorm:"not null" json:"name"`
	ContactPerson string       `json:"contact_person,omitempty"`
	Phone         string       `json:"phone,omitempty"`
	Email         string       `json:"email,omitempty"`
	Address       string       `json:"address,omitempty"`
	GSTNumber     string       `gorm:"column:gst_number" json:"gst_number,omitempty"`
	CreatedAt     time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Supplier) TableName() string { return "suppliers" }

type CreateSupplierRequest struct {
	ShopID        snowflake.ID `json:"-"`
	Name          string       `json:"name" binding:"required"`
	ContactPerson string       `json:"contact_person"`
	Phone         string       `json:"phone"`
	Email         string       `json:"email"`
	Address       string       `json:"address"`
	GSTNumber     string       `json:"gst_number"`
}

// UpdateSupplierRequest leaves nil fields unchanged.
type UpdateSupplierRequest struct {
	ShopID        snowflake.ID `json:"-"`
	SupplierID    snowflake.ID `json:"-"`
	Name          *string      `json:"name"`
	ContactPerson *string      `json:"contact_person"`
	Phone         *string      `json:"phone"`
	Email         *string      `json:"email"`
	Address       *string      `json:"address"`
	GSTNumber     *string      `json:"gst_number"`
}

type Service interface {
	Create(ctx context.Context, req CreateSupplierRequest) (*Supplier, error)
	GetByID(ctx context.Context, shopID, id snowflake.ID) (*Supplier, error)
	List(ctx context.Context, shopID snowflake.ID, search string) ([]Supplier, error)
	Update(ctx context.Context, req UpdateSupplierRequest) (*Supplier, error)
	Delete(ctx context.Context, shopID, id snowflake.ID) error
}
