package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopstack/shopbill/internal/clock"
	"github.com/shopstack/shopbill/internal/product/domain"
	"github.com/shopstack/shopbill/internal/product/repository"
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
		log:   p.Log.Named("product.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		return nil, domain.ErrInvalidUnit
	}
	if req.Price.IsNegative() {
		return nil, domain.ErrInvalidPrice
	}

	stock := req.StockQuantity
	if stock < 0 {
		stock = 0
	}
	minLevel := req.MinStockLevel
	if minLevel < 0 {
		minLevel = 0
	}

	now := s.clock.Now()
	product := domain.Product{
		ID:            s.genID.Generate(),
		ShopID:        req.ShopID,
		Name:          name,
		Category:      strings.TrimSpace(req.Category),
		Brand:         strings.TrimSpace(req.Brand),
		Description:   strings.TrimSpace(req.Description),
		Unit:          unit,
		Price:         req.Price,
		StockQuantity: stock,
		MinStockLevel: minLevel,
		Barcode:       strings.TrimSpace(req.Barcode),
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Service) GetByID(ctx context.Context, shopID, id snowflake.ID) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, shopID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

func (s *Service) List(ctx context.Context, req domain.ListProductRequest) (domain.ListProductResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}

	filter := repository.ListFilter{
		Search:     strings.TrimSpace(req.Search),
		Category:   strings.TrimSpace(req.Category),
		ActiveOnly: req.ActiveOnly,
	}

	products, total, err := s.repo.List(ctx, req.ShopID, filter, page, limit)
	if err != nil {
		return domain.ListProductResponse{}, err
	}

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		out = append(out, *p)
	}

	return domain.ListProductResponse{
		PageInfo: pagination.PageInfo{
			TotalCount: total,
			HasMore:    int64(page*limit) < total,
		},
		Products: out,
	}, nil
}

func (s *Service) Categories(ctx context.Context, shopID snowflake.ID) ([]string, error) {
	return s.repo.Categories(ctx, shopID)
}

func (s *Service) LowStock(ctx context.Context, shopID snowflake.ID) ([]domain.Product, error) {
	products, err := s.repo.LowStock(ctx, shopID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		out = append(out, *p)
	}
	return out, nil
}

func (s *Service) SearchByBarcode(ctx context.Context, shopID snowflake.ID, barcode string) (*domain.Product, error) {
	product, err := s.repo.FindByBarcode(ctx, shopID, strings.TrimSpace(barcode))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateProductRequest) (*domain.Product, error) {
	if _, err := s.GetByID(ctx, req.ShopID, req.ProductID); err != nil {
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
	if req.Category != nil {
		fields["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Brand != nil {
		fields["brand"] = strings.TrimSpace(*req.Brand)
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Unit != nil {
		unit := strings.TrimSpace(*req.Unit)
		if unit == "" {
			return nil, domain.ErrInvalidUnit
		}
		fields["unit"] = unit
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, domain.ErrInvalidPrice
		}
		fields["price"] = *req.Price
	}
	if req.StockQuantity != nil {
		stock := *req.StockQuantity
		if stock < 0 {
			stock = 0
		}
		fields["stock_quantity"] = stock
	}
	if req.MinStockLevel != nil {
		level := *req.MinStockLevel
		if level < 0 {
			level = 0
		}
		fields["min_stock_level"] = level
	}
	if req.Barcode != nil {
		fields["barcode"] = strings.TrimSpace(*req.Barcode)
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}

	if err := s.repo.UpdateFields(ctx, req.ProductID, fields); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, req.ShopID, req.ProductID)
}

func (s *Service) UpdateStock(ctx context.Context, shopID, id snowflake.ID, change int) (*domain.Product, error) {
	product, err := s.GetByID(ctx, shopID, id)
	if err != nil {
		return nil, err
	}

	stock := product.StockQuantity + change
	if stock < 0 {
		stock = 0
	}

	err = s.repo.UpdateFields(ctx, id, map[string]any{
		"stock_quantity": stock,
		"updated_at":     s.clock.Now(),
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, shopID, id)
}

func (s *Service) Delete(ctx context.Context, shopID, id snowflake.ID) error {
	if _, err := s.GetByID(ctx, shopID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
