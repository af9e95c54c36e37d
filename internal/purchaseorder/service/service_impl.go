package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopstack/shopbill/internal/clock"
	"github.com/shopstack/shopbill/internal/config"
	"github.com/shopstack/shopbill/internal/purchaseorder/domain"
	"github.com/shopstack/shopbill/internal/purchaseorder/repository"
	"github.com/shopstack/shopbill/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const numberRetries = 3

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
		log:        p.Log.Named("purchaseorder.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		billingCfg: p.BillingCfg,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePurchaseOrderRequest) (*domain.PurchaseOrder, error) {
	if req.TotalAmount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	now := s.clock.Now()
	orderDate := now
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	po := domain.PurchaseOrder{
		ID:               s.genID.Generate(),
		ShopID:           req.ShopID,
		SupplierID:       req.SupplierID,
		OrderDate:        orderDate,
		ExpectedDelivery: req.ExpectedDelivery,
		TotalAmount:      req.TotalAmount,
		Status:           domain.StatusPending,
		Notes:            strings.TrimSpace(req.Notes),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// The (shop_id, po_number) unique index arbitrates concurrent creates;
	// regenerate the sequence and retry on collision.
	var err error
	for attempt := 0; attempt < numberRetries; attempt++ {
		po.PONumber, err = s.nextNumber(ctx, req.ShopID, now)
		if err != nil {
			return nil, err
		}
		err = s.repo.Insert(ctx, &po)
		if err == nil {
			return s.GetByID(ctx, req.ShopID, po.ID)
		}
		if !db.IsDuplicateKeyErr(err) {
			return nil, err
		}
	}
	return nil, err
}

func (s *Service) nextNumber(ctx context.Context, shopID snowflake.ID, now time.Time) (string, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	count, err := s.repo.CountForDay(ctx, shopID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return "", err
	}

	numbering := s.billingCfg.Get().Numbering
	return fmt.Sprintf("%s-%d-%s-%0*d",
		numbering.PurchaseOrderPrefix, shopID, now.Format("20060102"),
		numbering.SequenceWidth, count+1), nil
}

func (s *Service) GetByID(ctx context.Context, shopID, id snowflake.ID) (*domain.PurchaseOrder, error) {
	po, err := s.repo.FindByID(ctx, shopID, id)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, domain.ErrNotFound
	}
	return po, nil
}

func (s *Service) List(ctx context.Context, shopID snowflake.ID, search string) ([]domain.PurchaseOrder, error) {
	orders, err := s.repo.List(ctx, shopID, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}
	out := make([]domain.PurchaseOrder, 0, len(orders))
	for _, po := range orders {
		out = append(out, *po)
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdatePurchaseOrderRequest) (*domain.PurchaseOrder, error) {
	if _, err := s.GetByID(ctx, req.ShopID, req.PurchaseOrderID); err != nil {
		return nil, err
	}

	fields := map[string]any{"updated_at": s.clock.Now()}
	if req.SupplierID != nil {
		fields["supplier_id"] = *req.SupplierID
	}
	if req.OrderDate != nil {
		fields["order_date"] = *req.OrderDate
	}
	if req.ExpectedDelivery != nil {
		fields["expected_delivery"] = *req.ExpectedDelivery
	}
	if req.TotalAmount != nil {
		if req.TotalAmount.IsNegative() {
			return nil, domain.ErrInvalidAmount
		}
		fields["total_amount"] = *req.TotalAmount
	}
	if req.Status != nil {
		switch *req.Status {
		case domain.StatusPending, domain.StatusReceived, domain.StatusCancelled:
			fields["status"] = *req.Status
		default:
			return nil, domain.ErrInvalidStatus
		}
	}
	if req.Notes != nil {
		fields["notes"] = strings.TrimSpace(*req.Notes)
	}

	if err := s.repo.UpdateFields(ctx, req.PurchaseOrderID, fields); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, req.ShopID, req.PurchaseOrderID)
}

func (s *Service) Delete(ctx context.Context, shopID, id snowflake.ID) error {
	if _, err := s.GetByID(ctx, shopID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
