package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/shopstack/shopbill/internal/invoice/domain"
	"github.com/shopstack/shopbill/pkg/db/option"
	"gorm.io/gorm"
)

// ProductRow is the slice of the product record the invoice engine touches.
type ProductRow struct {
	ID            snowflake.ID
	Name          string
	Unit          string
	StockQuantity int
}

type ListFilter struct {
	Status string
	Search string
}

type Repository interface {
	// Transaction runs fn against a repository bound to one database
	// transaction; any error rolls everything back.
	Transaction(ctx context.Context, fn func(Repository) error) error

	InsertInvoice(ctx context.Context, inv *domain.Invoice) error
	InsertItem(ctx context.Context, item *domain.InvoiceItem) error
	InsertPayment(ctx context.Context, payment *domain.InvoicePayment) error
	UpdateInvoiceFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	DeleteInvoice(ctx context.Context, id snowflake.ID) error
	DeleteItems(ctx context.Context, invoiceID snowflake.ID) error

	FindByID(ctx context.Context, shopID, id snowflake.ID) (*domain.Invoice, error)
	CountByShop(ctx context.Context, shopID snowflake.ID) (int64, error)
	List(ctx context.Context, shopID snowflake.ID, filter ListFilter, page, limit int) ([]*domain.Invoice, int64, error)
	ListByCustomer(ctx context.Context, shopID, customerID snowflake.ID) ([]*domain.Invoice, error)
	Items(ctx context.Context, invoiceID snowflake.ID) ([]*domain.InvoiceItem, error)
	Payments(ctx context.Context, invoiceID snowflake.ID) ([]*domain.InvoicePayment, error)
	CountPayments(ctx context.Context, invoiceID snowflake.ID) (int64, error)
	ReturnInvoices(ctx context.Context, originalID snowflake.ID) ([]*domain.Invoice, error)
	// ReturnedQuantities sums already-returned quantity per product across all
	// returns of the given invoice, as positive numbers.
	ReturnedQuantities(ctx context.Context, originalID snowflake.ID) (map[snowflake.ID]decimal.Decimal, error)

	GetProduct(ctx context.Context, shopID, productID snowflake.ID) (*ProductRow, error)
	SetProductStock(ctx context.Context, productID snowflake.ID, stock int) error
}

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) Repository {
	return &repo{db: db}
}

func (r *repo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repo{db: tx})
	})
}

func (r *repo) InsertInvoice(ctx context.Context, inv *domain.Invoice) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *repo) InsertItem(ctx context.Context, item *domain.InvoiceItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repo) InsertPayment(ctx context.Context, payment *domain.InvoicePayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repo) UpdateInvoiceFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repo) DeleteInvoice(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Invoice{}).Error
}

func (r *repo) DeleteItems(ctx context.Context, invoiceID snowflake.ID) error {
	return r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Delete(&domain.InvoiceItem{}).Error
}

func (r *repo) FindByID(ctx context.Context, shopID, id snowflake.ID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND id = ?", shopID, id).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *repo) CountByShop(ctx context.Context, shopID snowflake.ID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("shop_id = ?", shopID).
		Count(&count).Error
	return count, err
}

func (r *repo) List(ctx context.Context, shopID snowflake.ID, filter ListFilter, page, limit int) ([]*domain.Invoice, int64, error) {
	base := r.db.WithContext(ctx).
		Table("invoices i").
		Joins("LEFT JOIN customers c ON i.customer_id = c.id").
		Where("i.shop_id = ?", shopID)
	if filter.Status != "" {
		base = base.Where("i.status = ?", filter.Status)
	}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		base = base.Where("i.invoice_number LIKE ? OR c.name LIKE ?", term, term)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []*domain.Invoice
	err := option.ApplyOffset(page, limit).Apply(base).
		Select("i.*, COALESCE(c.name, '') AS customer_name").
		Order("i.created_at DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

func (r *repo) ListByCustomer(ctx context.Context, shopID, customerID snowflake.ID) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	err := r.db.WithContext(ctx).
		Table("invoices i").
		Select("i.*, COALESCE(c.name, '') AS customer_name").
		Joins("LEFT JOIN customers c ON i.customer_id = c.id").
		Where("i.shop_id = ? AND i.customer_id = ?", shopID, customerID).
		Order("i.created_at DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) Items(ctx context.Context, invoiceID snowflake.ID) ([]*domain.InvoiceItem, error) {
	var items []*domain.InvoiceItem
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Payments(ctx context.Context, invoiceID snowflake.ID) ([]*domain.InvoicePayment, error) {
	var payments []*domain.InvoicePayment
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("payment_date DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repo) CountPayments(ctx context.Context, invoiceID snowflake.ID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.InvoicePayment{}).
		Where("invoice_id = ?", invoiceID).
		Count(&count).Error
	return count, err
}

func (r *repo) ReturnInvoices(ctx context.Context, originalID snowflake.ID) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	err := r.db.WithContext(ctx).
		Where("original_invoice_id = ?", originalID).
		Order("created_at DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) ReturnedQuantities(ctx context.Context, originalID snowflake.ID) (map[snowflake.ID]decimal.Decimal, error) {
	var rows []struct {
		ProductID snowflake.ID
		Returned  decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("invoice_items ii").
		Select("ii.product_id, COALESCE(SUM(-ii.quantity), 0) AS returned").
		Joins("JOIN invoices r ON ii.invoice_id = r.id").
		Where("r.original_invoice_id = ?", originalID).
		Group("ii.product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[snowflake.ID]decimal.Decimal, len(rows))
	for _, row := range rows {
		out[row.ProductID] = row.Returned
	}
	return out, nil
}

func (r *repo) GetProduct(ctx context.Context, shopID, productID snowflake.ID) (*ProductRow, error) {
	var row ProductRow
	err := r.db.WithContext(ctx).
		Table("products").
		Select("id, name, unit, stock_quantity").
		Where("shop_id = ? AND id = ?", shopID, productID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *repo) SetProductStock(ctx context.Context, productID snowflake.ID, stock int) error {
	return r.db.WithContext(ctx).
		Table("products").
		Where("id = ?", productID).
		Update("stock_quantity", stock).Error
}
