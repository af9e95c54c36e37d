package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopstack/shopbill/internal/purchaseorder/domain"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, po *domain.PurchaseOrder) error
	FindByID(ctx context.Context, shopID, id snowflake.ID) (*domain.PurchaseOrder, error)
	List(ctx context.Context, shopID snowflake.ID, search string) ([]*domain.PurchaseOrder, error)
	CountForDay(ctx context.Context, shopID snowflake.ID, dayStart, dayEnd time.Time) (int64, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, id snowflake.ID) error
}

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) Repository {
	return &repo{db: db}
}

func (r *repo) Insert(ctx context.Context, po *domain.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(po).Error
}

func (r *repo) FindByID(ctx context.Context, shopID, id snowflake.ID) (*domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder
	err := r.db.WithContext(ctx).
		Table("purchase_orders po").
		Select("po.*, COALESCE(s.name, '') AS supplier_name").
		Joins("LEFT JOIN suppliers s ON po.supplier_id = s.id").
		Where("po.shop_id = ? AND po.id = ?", shopID, id).
		First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &po, nil
}

func (r *repo) List(ctx context.Context, shopID snowflake.ID, search string) ([]*domain.PurchaseOrder, error) {
	query := r.db.WithContext(ctx).
		Table("purchase_orders po").
		Select("po.*, COALESCE(s.name, '') AS supplier_name").
		Joins("LEFT JOIN suppliers s ON po.supplier_id = s.id").
		Where("po.shop_id = ?", shopID)
	if search != "" {
		term := "%" + search + "%"
		query = query.Where("po.po_number LIKE ? OR s.name LIKE ? OR po.status LIKE ?", term, term, term)
	}

	var orders []*domain.PurchaseOrder
	err := query.Order("po.order_date DESC").Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repo) CountForDay(ctx context.Context, shopID snowflake.ID, dayStart, dayEnd time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.PurchaseOrder{}).
		Where("shop_id = ? AND created_at >= ? AND created_at < ?", shopID, dayStart, dayEnd).
		Count(&count).Error
	return count, err
}

func (r *repo) UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&domain.PurchaseOrder{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repo) Delete(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.PurchaseOrder{}).Error
}
