package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopstack/shopbill/internal/clock"
	"github.com/shopstack/shopbill/internal/customer/domain"
	"github.com/shopstack/shopbill/internal/customer/repository"
	"github.com/shopstack/shopbill/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  repository.Repository
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  repository.Repository
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (*domain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now()
	customer := domain.Customer{
		ID:        s.genID.Generate(),
		ShopID:    req.ShopID,
		Name:      name,
		Phone:     strings.TrimSpace(req.Phone),
		Email:     strings.TrimSpace(req.Email),
		Address:   strings.TrimSpace(req.Address),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *Service) GetByID(ctx context.Context, shopID, id snowflake.ID) (*domain.Customer, error) {
	customer, err := s.repo.FindByID(ctx, shopID, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	return customer, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) (domain.ListCustomerResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}

	customers, total, err := s.repo.List(ctx, req.ShopID, strings.TrimSpace(req.Search), page, limit)
	if err != nil {
		return domain.ListCustomerResponse{}, err
	}

	out := make([]domain.Customer, 0, len(customers))
	for _, c := range customers {
		out = append(out, *c)
	}

	return domain.ListCustomerResponse{
		PageInfo: pagination.PageInfo{
			TotalCount: total,
			HasMore:    int64(page*limit) < total,
		},
		Customers: out,
	}, nil
}

func (s *Service) SearchByPhone(ctx context.Context, shopID snowflake.ID, phone string) ([]domain.Customer, error) {
	customers, err := s.repo.SearchByPhone(ctx, shopID, strings.TrimSpace(phone))
	if err != nil {
		return nil, err
	}
	out := make([]domain.Customer, 0, len(customers))
	for _, c := range customers {
		out = append(out, *c)
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateCustomerRequest) (*domain.Customer, error) {
	if _, err := s.GetByID(ctx, req.ShopID, req.CustomerID); err != nil {
		return nil, err
	}

	fields := map[string]any{"updated_at": s.clock.Now()}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		fields["name"] = name
	}
	if req.Phone != nil {
		fields["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		fields["email"] = strings.TrimSpace(*req.Email)
	}
	if req.Address != nil {
		fields["address"] = strings.TrimSpace(*req.Address)
	}

	if err := s.repo.UpdateFields(ctx, req.CustomerID, fields); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, req.ShopID, req.CustomerID)
}

func (s *Service) Delete(ctx context.Context, shopID, id snowflake.ID) error {
	if _, err := s.GetByID(ctx, shopID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) Stats(ctx context.Context, shopID, id snowflake.ID) (*domain.Stats, error) {
	if _, err := s.GetByID(ctx, shopID, id); err != nil {
		return nil, err
	}
	return s.repo.Stats(ctx, id)
}
