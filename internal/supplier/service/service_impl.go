package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopstack/shopbill/internal/clock"
	"github.com/shopstack/shopbill/internal/supplier/domain"
	"github.com/shopstack/shopbill/pkg/db/option"
	"github.com/shopstack/shopbill/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  repository.Repository[domain.Supplier]
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  repository.Repository[domain.Supplier]
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("supplier.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateSupplierRequest) (*domain.Supplier, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now()
	supplier := domain.Supplier{
		ID:            s.genID.Generate(),
		ShopID:        req.ShopID,
		Name:          name,
		ContactPerson: strings.TrimSpace(req.ContactPerson),
		Phone:         strings.TrimSpace(req.Phone),
		Email:         strings.TrimSpace(req.Email),
		Address:       strings.TrimSpace(req.Address),
		GSTNumber:     strings.TrimSpace(req.GSTNumber),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, &supplier); err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (s *Service) GetByID(ctx context.Context, shopID, id snowflake.ID) (*domain.Supplier, error) {
	supplier, err := s.repo.FindOne(ctx, &domain.Supplier{ID: id, ShopID: shopID})
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.ErrNotFound
	}
	return supplier, nil
}

func (s *Service) List(ctx context.Context, shopID snowflake.ID, search string) ([]domain.Supplier, error) {
	opts := []option.QueryOption{
		option.WithSortBy(option.QuerySortBy{Field: "name"}),
	}
	if term := strings.TrimSpace(search); term != "" {
		opts = append(opts, option.WithSearch(term, "name", "contact_person", "phone"))
	}

	suppliers, err := s.repo.Find(ctx, &domain.Supplier{ShopID: shopID}, opts...)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Supplier, 0, len(suppliers))
	for _, sp := range suppliers {
		out = append(out, *sp)
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateSupplierRequest) (*domain.Supplier, error) {
	if _, err := s.GetByID(ctx, req.ShopID, req.SupplierID); err != nil {
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
	if req.ContactPerson != nil {
		fields["contact_person"] = strings.TrimSpace(*req.ContactPerson)
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
	if req.GSTNumber != nil {
		fields["gst_number"] = strings.TrimSpace(*req.GSTNumber)
	}

	if err := s.repo.Update(ctx, req.SupplierID.String(), fields); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, req.ShopID, req.SupplierID)
}

func (s *Service) Delete(ctx context.Context, shopID, id snowflake.ID) error {
	if _, err := s.GetByID(ctx, shopID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id.String())
}
