package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopstack/shopbill/internal/clock"
	"github.com/shopstack/shopbill/internal/config"
	"github.com/shopstack/shopbill/internal/expense/domain"
	"github.com/shopstack/shopbill/pkg/db/option"
	"github.com/shopstack/shopbill/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       repository.Repository[domain.Expense]
	BillingCfg *config.BillingConfigHolder
}

type Service struct {
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       repository.Repository[domain.Expense]
	billingCfg *config.BillingConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		log:        p.Log.Named("expense.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		billingCfg: p.BillingCfg,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateExpenseRequest) (*domain.Expense, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}
	if !req.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	now := s.clock.Now()
	expenseDate := now
	if req.ExpenseDate != nil {
		expenseDate = *req.ExpenseDate
	}
	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		method = s.billingCfg.Get().DefaultPaymentMethod
	}

	expense := domain.Expense{
		ID:            s.genID.Generate(),
		ShopID:        req.ShopID,
		Title:         title,
		Amount:        req.Amount,
		Category:      strings.TrimSpace(req.Category),
		SupplierID:    req.SupplierID,
		ExpenseDate:   expenseDate,
		Description:   strings.TrimSpace(req.Description),
		PaymentMethod: method,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, &expense); err != nil {
		return nil, err
	}
	return &expense, nil
}

func (s *Service) GetByID(ctx context.Context, shopID, id snowflake.ID) (*domain.Expense, error) {
	expense, err := s.repo.FindOne(ctx, &domain.Expense{ID: id, ShopID: shopID})
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, domain.ErrNotFound
	}
	return expense, nil
}

func (s *Service) List(ctx context.Context, shopID snowflake.ID, search string) ([]domain.Expense, error) {
	opts := []option.QueryOption{
		option.WithSortBy(option.QuerySortBy{Field: "expense_date", Desc: true}),
	}
	if term := strings.TrimSpace(search); term != "" {
		opts = append(opts, option.WithSearch(term, "title", "category"))
	}

	expenses, err := s.repo.Find(ctx, &domain.Expense{ShopID: shopID}, opts...)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Expense, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, *e)
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateExpenseRequest) (*domain.Expense, error) {
	if _, err := s.GetByID(ctx, req.ShopID, req.ExpenseID); err != nil {
		return nil, err
	}

	fields := map[string]any{"updated_at": s.clock.Now()}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.ErrInvalidTitle
		}
		fields["title"] = title
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, domain.ErrInvalidAmount
		}
		fields["amount"] = *req.Amount
	}
	if req.Category != nil {
		fields["category"] = strings.TrimSpace(*req.Category)
	}
	if req.SupplierID != nil {
		fields["supplier_id"] = *req.SupplierID
	}
	if req.ExpenseDate != nil {
		fields["expense_date"] = *req.ExpenseDate
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.PaymentMethod != nil {
		fields["payment_method"] = strings.TrimSpace(*req.PaymentMethod)
	}

	if err := s.repo.Update(ctx, req.ExpenseID.String(), fields); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, req.ShopID, req.ExpenseID)
}

func (s *Service) Delete(ctx context.Context, shopID, id snowflake.ID) error {
	if _, err := s.GetByID(ctx, shopID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id.String())
}
