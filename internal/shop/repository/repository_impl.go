package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/shopstack/shopbill/internal/shop/domain"
	"github.com/shopstack/shopbill/pkg/db/option"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, shop *domain.Shop) error
	FindByID(ctx context.Context, id snowflake.ID) (*domain.Shop, error)
	FindByUserID(ctx context.Context, userID snowflake.ID) (*domain.Shop, error)
	List(ctx context.Context, search string, page, limit int) ([]*domain.Shop, int64, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error

	CountRows(ctx context.Context, table string, shopID snowflake.ID) (int64, error)
	SumInvoices(ctx context.Context, shopID snowflake.ID, column string, from, to *time.Time, statuses []string) (decimal.Decimal, int64, error)
	LowStock(ctx context.Context, shopID snowflake.ID) ([]domain.LowStockItem, error)
	RecentInvoices(ctx context.Context, shopID snowflake.ID, limit int) ([]domain.RecentInvoice, error)
	OverdueOutstanding(ctx context.Context, shopID snowflake.ID, olderThan time.Time, notOlderThan *time.Time) (decimal.Decimal, int64, error)
}

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) Repository {
	return &repo{db: db}
}

func (r *repo) Insert(ctx context.Context, shop *domain.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.Shop, error) {
	var shop domain.Shop
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&shop).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shop, nil
}

func (r *repo) FindByUserID(ctx context.Context, userID snowflake.ID) (*domain.Shop, error) {
	var shop domain.Shop
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&shop).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shop, nil
}

func (r *repo) List(ctx context.Context, search string, page, limit int) ([]*domain.Shop, int64, error) {
	stmt := r.db.WithContext(ctx).Model(&domain.Shop{})
	if search != "" {
		like := "%" + search + "%"
		stmt = stmt.Where("shop_name LIKE ? OR owner_name LIKE ?", like, like)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var shops []*domain.Shop
	err := option.ApplyOffset(page, limit).Apply(stmt).
		Order("created_at desc").
		Find(&shops).Error
	if err != nil {
		return nil, 0, err
	}
	return shops, total, nil
}

func (r *repo) UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&domain.Shop{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repo) CountRows(ctx context.Context, table string, shopID snowflake.ID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table(table).
		Where("shop_id = ?", shopID).
		Count(&count).Error
	return count, err
}

// SumInvoices totals the given money column over non-return invoices within
// the optional created_at window and status set.
func (r *repo) SumInvoices(ctx context.Context, shopID snowflake.ID, column string, from, to *time.Time, statuses []string) (decimal.Decimal, int64, error) {
	stmt := r.db.WithContext(ctx).
		Table("invoices").
		Where("shop_id = ? AND original_invoice_id IS NULL", shopID)
	if from != nil {
		stmt = stmt.Where("created_at >= ?", *from)
	}
	if to != nil {
		stmt = stmt.Where("created_at < ?", *to)
	}
	if len(statuses) > 0 {
		stmt = stmt.Where("status IN ?", statuses)
	}

	var row struct {
		Total decimal.Decimal
		Count int64
	}
	err := stmt.Select("COALESCE(SUM(" + column + "), 0) AS total, COUNT(*) AS count").Scan(&row).Error
	if err != nil {
		return decimal.Zero, 0, err
	}
	return row.Total, row.Count, nil
}

func (r *repo) LowStock(ctx context.Context, shopID snowflake.ID) ([]domain.LowStockItem, error) {
	var items []domain.LowStockItem
	err := r.db.WithContext(ctx).
		Table("products").
		Select("id, name, category, stock_quantity, min_stock_level, unit").
		Where("shop_id = ? AND is_active = ? AND stock_quantity <= min_stock_level", shopID, true).
		Order("stock_quantity asc").
		Scan(&items).Error
	return items, err
}

func (r *repo) RecentInvoices(ctx context.Context, shopID snowflake.ID, limit int) ([]domain.RecentInvoice, error) {
	var rows []domain.RecentInvoice
	err := r.db.WithContext(ctx).
		Table("invoices i").
		Select("i.id, i.invoice_number, i.total_amount, i.status, i.created_at, COALESCE(c.name, '') AS customer_name").
		Joins("LEFT JOIN customers c ON i.customer_id = c.id").
		Where("i.shop_id = ?", shopID).
		Order("i.created_at desc").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *repo) OverdueOutstanding(ctx context.Context, shopID snowflake.ID, olderThan time.Time, notOlderThan *time.Time) (decimal.Decimal, int64, error) {
	stmt := r.db.WithContext(ctx).
		Table("invoices").
		Where("shop_id = ? AND status != ? AND due_date IS NOT NULL AND due_date <= ?", shopID, "paid", olderThan)
	if notOlderThan != nil {
		stmt = stmt.Where("due_date > ?", *notOlderThan)
	}

	var row struct {
		Total decimal.Decimal
		Count int64
	}
	err := stmt.Select("COALESCE(SUM(balance_amount), 0) AS total, COUNT(*) AS count").Scan(&row).Error
	if err != nil {
		return decimal.Zero, 0, err
	}
	return row.Total, row.Count, nil
}
