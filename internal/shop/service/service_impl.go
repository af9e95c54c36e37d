package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopstack/shopbill/internal/clock"
	"github.com/shopstack/shopbill/internal/config"
	"github.com/shopstack/shopbill/internal/shop/domain"
	"github.com/shopstack/shopbill/internal/shop/repository"
	"github.com/shopstack/shopbill/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       repository.Repository
	BillingCfg *config.BillingConfigHolder
}

type Service struct {
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       repository.Repository
	billingCfg *config.BillingConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		log:        p.Log.Named("shop.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		billingCfg: p.BillingCfg,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateShopRequest) (*domain.Shop, error) {
	shopName := strings.TrimSpace(req.ShopName)
	if shopName == "" {
		return nil, domain.ErrInvalidShopName
	}
	ownerName := strings.TrimSpace(req.OwnerName)
	if ownerName == "" {
		return nil, domain.ErrInvalidOwnerName
	}

	now := s.clock.Now()
	shop := domain.Shop{
		ID:               s.genID.Generate(),
		UserID:           req.UserID,
		ShopName:         shopName,
		OwnerName:        ownerName,
		Phone:            strings.TrimSpace(req.Phone),
		Address:          strings.TrimSpace(req.Address),
		SubscriptionPlan: "basic",
		IsActive:         false,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Insert(ctx, &shop); err != nil {
		return nil, err
	}

	s.log.Info("shop registered", zap.String("shop_id", shop.ID.String()))
	return &shop, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Shop, error) {
	shop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, domain.ErrNotFound
	}
	return shop, nil
}

func (s *Service) GetByUserID(ctx context.Context, userID snowflake.ID) (*domain.Shop, error) {
	shop, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, domain.ErrNotFound
	}
	return shop, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateShopRequest) (*domain.Shop, error) {
	if _, err := s.GetByID(ctx, req.ShopID); err != nil {
		return nil, err
	}

	fields := map[string]any{"updated_at": s.clock.Now()}
	if req.ShopName != nil {
		name := strings.TrimSpace(*req.ShopName)
		if name == "" {
			return nil, domain.ErrInvalidShopName
		}
		fields["shop_name"] = name
	}
	if req.OwnerName != nil {
		name := strings.TrimSpace(*req.OwnerName)
		if name == "" {
			return nil, domain.ErrInvalidOwnerName
		}
		fields["owner_name"] = name
	}
	if req.Phone != nil {
		fields["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		fields["address"] = strings.TrimSpace(*req.Address)
	}

	if err := s.repo.UpdateFields(ctx, req.ShopID, fields); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, req.ShopID)
}

func (s *Service) List(ctx context.Context, req domain.ListShopRequest) (domain.ListShopResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}

	shops, total, err := s.repo.List(ctx, strings.TrimSpace(req.Search), page, limit)
	if err != nil {
		return domain.ListShopResponse{}, err
	}

	out := make([]domain.Shop, 0, len(shops))
	for _, shop := range shops {
		out = append(out, *shop)
	}

	return domain.ListShopResponse{
		PageInfo: pagination.PageInfo{
			TotalCount: total,
			HasMore:    int64(page*limit) < total,
		},
		Shops: out,
	}, nil
}

func (s *Service) SetActive(ctx context.Context, id snowflake.ID, active bool) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.UpdateFields(ctx, id, map[string]any{
		"is_active":  active,
		"updated_at": s.clock.Now(),
	})
}

// DashboardStats assembles the shop home-screen aggregates in one call.
func (s *Service) DashboardStats(ctx context.Context, shopID snowflake.ID) (*domain.DashboardStats, error) {
	if _, err := s.GetByID(ctx, shopID); err != nil {
		return nil, err
	}

	stats := &domain.DashboardStats{}

	var err error
	if stats.TotalCustomers, err = s.repo.CountRows(ctx, "customers", shopID); err != nil {
		return nil, err
	}
	if stats.TotalProducts, err = s.repo.CountRows(ctx, "products", shopID); err != nil {
		return nil, err
	}
	if stats.TotalInvoices, err = s.repo.CountRows(ctx, "invoices", shopID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	if stats.TodaySales, _, err = s.repo.SumInvoices(ctx, shopID, "total_amount", &todayStart, nil, nil); err != nil {
		return nil, err
	}
	if stats.MonthSales, stats.MonthInvoiceCount, err = s.repo.SumInvoices(ctx, shopID, "total_amount", &monthStart, nil, nil); err != nil {
		return nil, err
	}
	if stats.OutstandingBalance, _, err = s.repo.SumInvoices(ctx, shopID, "balance_amount", nil, nil, []string{"pending", "partial"}); err != nil {
		return nil, err
	}
	if _, stats.PendingInvoices, err = s.repo.SumInvoices(ctx, shopID, "balance_amount", nil, nil, []string{"pending"}); err != nil {
		return nil, err
	}

	if stats.LowStockProducts, err = s.repo.LowStock(ctx, shopID); err != nil {
		return nil, err
	}
	if stats.RecentInvoices, err = s.repo.RecentInvoices(ctx, shopID, 5); err != nil {
		return nil, err
	}

	for _, bucket := range s.billingCfg.Get().AgingBuckets {
		olderThan := now.AddDate(0, 0, -bucket.MinDays)
		var notOlderThan *time.Time
		if bucket.MaxDays != nil {
			t := now.AddDate(0, 0, -(*bucket.MaxDays + 1))
			notOlderThan = &t
		}
		outstanding, count, err := s.repo.OverdueOutstanding(ctx, shopID, olderThan, notOlderThan)
		if err != nil {
			return nil, err
		}
		stats.ReceivableAging = append(stats.ReceivableAging, domain.AgingSlice{
			Label:       bucket.Label,
			Outstanding: outstanding,
			Invoices:    count,
		})
	}

	return stats, nil
}
