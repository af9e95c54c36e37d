package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopstack/shopbill/pkg/db/pagination"
)

type CreateShopRequest struct {
	UserID    snowflake.ID
	ShopName  string
	OwnerName string
	Phone     string
	Address   string
}

// UpdateShopRequest enumerates the mutable profile fields. Nil means "leave
// unchanged".
type UpdateShopRequest struct {
	ShopID    snowflake.ID
	ShopName  *string
	OwnerName *string
	Phone     *string
	Address   *string
}

type ListShopRequest struct {
	Page   int
	Limit  int
	Search string
}

type ListShopResponse struct {
	pagination.PageInfo
	Shops []Shop `json:"shops"`
}

type Service interface {
	Create(ctx context.Context, req CreateShopRequest) (*Shop, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Shop, error)
	GetByUserID(ctx context.Context, userID snowflake.ID) (*Shop, error)
	Update(ctx context.Context, req UpdateShopRequest) (*Shop, error)
	List(ctx context.Context, req ListShopRequest) (ListShopResponse, error)
	SetActive(ctx context.Context, id snowflake.ID, active bool) error
	DashboardStats(ctx context.Context, shopID snowflake.ID) (*DashboardStats, error)
}

var (
	ErrNotFound         = errors.New("shop_not_found")
	ErrInvalidShopName  = errors.New("invalid_shop_name")
	ErrInvalidOwnerName = errors.New("invalid_owner_name")
)
