package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopstack/shopbill/internal/product/domain"
	"github.com/shopstack/shopbill/pkg/db/option"
	"gorm.io/gorm"
)

type ListFilter struct {
	Search     string
	Category   string
	ActiveOnly bool
}

type Repository interface {
	Insert(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, shopID, id snowflake.ID) (*domain.Product, error)
	List(ctx context.Context, shopID snowflake.ID, filter ListFilter, page, limit int) ([]*domain.Product, int64, error)
	Categories(ctx context.Context, shopID snowflake.ID) ([]string, error)
	LowStock(ctx context.Context, shopID snowflake.ID) ([]*domain.Product, error)
	FindByBarcode(ctx context.Context, shopID snowflake.ID, barcode string) (*domain.Product, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, id snowflake.ID) error
}

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) Repository {
	return &repo{db: db}
}

func (r *repo) Insert(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, shopID, id snowflake.ID) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND id = ?", shopID, id).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *repo) List(ctx context.Context, shopID snowflake.ID, filter ListFilter, page, limit int) ([]*domain.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Product{}).Where("shop_id = ?", shopID)
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR brand LIKE ? OR barcode LIKE ?", term, term, term)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []*domain.Product
	err := option.ApplyOffset(page, limit).Apply(query).
		Order("name ASC").
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *repo) Categories(ctx context.Context, shopID snowflake.ID) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Distinct("category").
		Where("shop_id = ? AND is_active = ? AND category != ''", shopID, true).
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repo) LowStock(ctx context.Context, shopID snowflake.ID) ([]*domain.Product, error) {
	var products []*domain.Product
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND is_active = ? AND stock_quantity <= min_stock_level", shopID, true).
		Order("stock_quantity ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repo) FindByBarcode(ctx context.Context, shopID snowflake.ID, barcode string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND barcode = ? AND is_active = ?", shopID, barcode, true).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *repo) UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repo) Delete(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Product{}).Error
}
