package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopstack/shopbill/internal/clock"
	shopdomain "github.com/shopstack/shopbill/internal/shop/domain"
	"github.com/shopstack/shopbill/internal/verification/domain"
	"github.com/shopstack/shopbill/internal/verification/repository"
	"github.com/shopstack/shopbill/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    repository.Repository
	ShopSvc shopdomain.Service
}

type Service struct {
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    repository.Repository
	shopSvc shopdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("verification.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		shopSvc: p.ShopSvc,
	}
}

func (s *Service) Submit(ctx context.Context, req domain.SubmitRequest) (*domain.Verification, error) {
	if !req.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	now := s.clock.Now()
	v := domain.Verification{
		ID:              s.genID.Generate(),
		ShopID:          req.ShopID,
		Amount:          req.Amount,
		PaymentMethod:   strings.TrimSpace(req.PaymentMethod),
		ReferenceNumber: strings.TrimSpace(req.ReferenceNumber),
		PaymentProof:    strings.TrimSpace(req.PaymentProof),
		Status:          domain.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, &v); err != nil {
		return nil, err
	}

	s.log.Info("payment submitted for verification",
		zap.String("shop_id", v.ShopID.String()),
		zap.String("amount", v.Amount.String()))
	return &v, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Verification, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (s *Service) ListByShop(ctx context.Context, shopID snowflake.ID) ([]domain.Verification, error) {
	list, err := s.repo.ListByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Verification, 0, len(list))
	for _, v := range list {
		out = append(out, *v)
	}
	return out, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}

	list, total, err := s.repo.List(ctx, req.Status, page, limit)
	if err != nil {
		return domain.ListResponse{}, err
	}

	out := make([]domain.Verification, 0, len(list))
	for _, v := range list {
		out = append(out, *v)
	}

	return domain.ListResponse{
		PageInfo: pagination.PageInfo{
			TotalCount: total,
			HasMore:    int64(page*limit) < total,
		},
		Verifications: out,
	}, nil
}

func (s *Service) Verify(ctx context.Context, id snowflake.ID, adminNotes string) (*domain.Verification, error) {
	v, err := s.review(ctx, id, domain.StatusVerified, adminNotes)
	if err != nil {
		return nil, err
	}

	if err := s.shopSvc.SetActive(ctx, v.ShopID, true); err != nil {
		return nil, err
	}
	s.log.Info("payment verified, shop activated",
		zap.String("shop_id", v.ShopID.String()),
		zap.String("verification_id", id.String()))
	return v, nil
}

func (s *Service) Reject(ctx context.Context, id snowflake.ID, adminNotes string) (*domain.Verification, error) {
	return s.review(ctx, id, domain.StatusRejected, adminNotes)
}

func (s *Service) review(ctx context.Context, id snowflake.ID, status domain.Status, adminNotes string) (*domain.Verification, error) {
	v, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status != domain.StatusPending {
		return nil, domain.ErrAlreadyReviewed
	}

	err = s.repo.UpdateFields(ctx, id, map[string]any{
		"status":      status,
		"admin_notes": strings.TrimSpace(adminNotes),
		"updated_at":  s.clock.Now(),
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}
