package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/shopstack/shopbill/internal/customer/domain"
	"github.com/shopstack/shopbill/pkg/db/option"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, customer *domain.Customer) error
	FindByID(ctx context.Context, shopID, id snowflake.ID) (*domain.Customer, error)
	List(ctx context.Context, shopID snowflake.ID, search string, page, limit int) ([]*domain.Customer, int64, error)
	SearchByPhone(ctx context.Context, shopID snowflake.ID, phone string) ([]*domain.Customer, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, id snowflake.ID) error
	Stats(ctx context.Context, id snowflake.ID) (*domain.Stats, error)
}

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) Repository {
	return &repo{db: db}
}

func (r *repo) Insert(ctx context.Context, customer *domain.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *repo) FindByID(ctx context.Context, shopID, id snowflake.ID) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND id = ?", shopID, id).
		First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *repo) List(ctx context.Context, shopID snowflake.ID, search string, page, limit int) ([]*domain.Customer, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Customer{}).Where("shop_id = ?", shopID)
	if search != "" {
		term := "%" + search + "%"
		query = query.Where("name LIKE ? OR phone LIKE ? OR email LIKE ?", term, term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []*domain.Customer
	err := option.ApplyOffset(page, limit).Apply(query).
		Order("name ASC").
		Find(&customers).Error
	if err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

func (r *repo) SearchByPhone(ctx context.Context, shopID snowflake.ID, phone string) ([]*domain.Customer, error) {
	var customers []*domain.Customer
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND phone LIKE ?", shopID, "%"+phone+"%").
		Order("name ASC").
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *repo) UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repo) Delete(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Customer{}).Error
}

func (r *repo) Stats(ctx context.Context, id snowflake.ID) (*domain.Stats, error) {
	var totals struct {
		InvoiceCount   int64
		TotalPurchases decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("invoices").
		Select("COUNT(*) AS invoice_count, COALESCE(SUM(total_amount), 0) AS total_purchases").
		Where("customer_id = ?", id).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	var outstanding struct {
		Total decimal.Decimal
	}
	err = r.db.WithContext(ctx).
		Table("invoices").
		Select("COALESCE(SUM(balance_amount), 0) AS total").
		Where("customer_id = ? AND balance_amount > 0", id).
		Scan(&outstanding).Error
	if err != nil {
		return nil, err
	}

	return &domain.Stats{
		InvoiceCount:       totals.InvoiceCount,
		TotalPurchases:     totals.TotalPurchases,
		OutstandingBalance: outstanding.Total,
	}, nil
}
