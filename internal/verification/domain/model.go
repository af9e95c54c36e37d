// Package domain contains subscription payment submissions awaiting admin
// review.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/shopstack/shopbill/pkg/db/pagination"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
)

var (
	ErrNotFound        = errors.New("verification_not_found")
	ErrInvalidAmount   = errors.New("verification_amount_invalid")
	ErrAlreadyReviewed = errors.New("verification_already_reviewed")
)

type Verification struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	ShopID          snowflake.ID    `gorm:"not null;index" json:"shop_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentMethod   string          `gorm:"not null" json:"payment_method"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	PaymentProof    string          `json:"payment_proof,omitempty"`
	Status          Status          `gorm:"not null;default:'pending'" json:"status"`
	AdminNotes      string          `json:"admin_notes,omitempty"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`

	ShopName string `gorm:"->" json:"shop_name,omitempty"`
}

// TableName sets the database table name.
func (Verification) TableName() string { return "payment_verifications" }

type SubmitRequest struct {
	ShopID          snowflake.ID    `json:"-"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   string          `json:"payment_method" binding:"required"`
	ReferenceNumber string          `json:"reference_number"`
	PaymentProof    string          `json:"payment_proof"`
}

type ListRequest struct {
	Status Status `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

type ListResponse struct {
	PageInfo      pagination.PageInfo `json:"page_info"`
	Verifications []Verification      `json:"verifications"`
}

type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*Verification, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Verification, error)
	ListByShop(ctx context.Context, shopID snowflake.ID) ([]Verification, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	// Verify approves a pending submission and activates the submitting shop.
	Verify(ctx context.Context, id snowflake.ID, adminNotes string) (*Verification, error)
	Reject(ctx context.Context, id snowflake.ID, adminNotes string) (*Verification, error)
}
