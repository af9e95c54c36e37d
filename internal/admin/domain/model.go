// Package domain contains the platform-wide admin dashboard view.
package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// PlatformStats is the admin dashboard aggregate across all tenants.
type PlatformStats struct {
	TotalShops           int64           `json:"total_shops"`
	ActiveShops          int64           `json:"active_shops"`
	TotalUsers           int64           `json:"total_users"`
	PendingVerifications int64           `json:"pending_verifications"`
	TotalRevenue         decimal.Decimal `json:"total_revenue"`
}

type Service interface {
	PlatformStats(ctx context.Context) (*PlatformStats, error)
}
