package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/shopstack/shopbill/internal/verification/domain"
	"github.com/shopstack/shopbill/pkg/db/option"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, v *domain.Verification) error
	FindByID(ctx context.Context, id snowflake.ID) (*domain.Verification, error)
	ListByShop(ctx context.Context, shopID snowflake.ID) ([]*domain.Verification, error)
	List(ctx context.Context, status domain.Status, page, limit int) ([]*domain.Verification, int64, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	CountByStatus(ctx context.Context, status domain.Status) (int64, error)
	SumVerified(ctx context.Context) (decimal.Decimal, error)
}

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) Repository {
	return &repo{db: db}
}

func (r *repo) Insert(ctx context.Context, v *domain.Verification) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.Verification, error) {
	var v domain.Verification
	err := r.db.WithContext(ctx).
		Table("payment_verifications pv").
		Select("pv.*, COALESCE(s.shop_name, '') AS shop_name").
		Joins("LEFT JOIN shops s ON pv.shop_id = s.id").
		Where("pv.id = ?", id).
		First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *repo) ListByShop(ctx context.Context, shopID snowflake.ID) ([]*domain.Verification, error) {
	var out []*domain.Verification
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) List(ctx context.Context, status domain.Status, page, limit int) ([]*domain.Verification, int64, error) {
	query := r.db.WithContext(ctx).
		Table("payment_verifications pv").
		Joins("LEFT JOIN shops s ON pv.shop_id = s.id")
	if status != "" {
		query = query.Where("pv.status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []*domain.Verification
	err := option.ApplyOffset(page, limit).Apply(query).
		Select("pv.*, COALESCE(s.shop_name, '') AS shop_name").
		Order("pv.created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *repo) UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&domain.Verification{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repo) CountByStatus(ctx context.Context, status domain.Status) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Verification{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *repo) SumVerified(ctx context.Context) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("payment_verifications").
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("status = ?", domain.StatusVerified).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}
