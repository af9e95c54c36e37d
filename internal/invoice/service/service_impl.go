package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/shopstack/shopbill/internal/clock"
	"github.com/shopstack/shopbill/internal/config"
	"github.com/shopstack/shopbill/internal/invoice/domain"
	"github.com/shopstack/shopbill/internal/invoice/repository"
	"github.com/shopstack/shopbill/pkg/db"
	"github.com/shopstack/shopbill/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func pageInfo(page, limit int, total int64) pagination.PageInfo {
	return pagination.PageInfo{
		TotalCount: total,
		HasMore:    int64(page*limit) < total,
	}
}

const numberRetries = 3

type Params struct {
	fx.In

	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       repository.Repository
	BillingCfg *config.BillingConfigHolder
}

type Service struct {
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       repository.Repository
	billingCfg *config.BillingConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		log:        p.Log.Named("invoice.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		billingCfg: p.BillingCfg,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (*domain.Invoice, error) {
	if len(req.Items) == 0 {
		return nil, domain.ErrNoItems
	}
	for _, item := range req.Items {
		if !item.Quantity.IsPositive() || item.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidQuantity
		}
	}

	now := s.clock.Now()

	subtotal := decimal.Zero
	for _, item := range req.Items {
		subtotal = subtotal.Add(item.Quantity.Mul(item.UnitPrice).Round(2))
	}
	total := subtotal.Add(req.TaxAmount).Sub(req.DiscountAmount)

	if req.InitialPayment.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	if req.InitialPayment.GreaterThan(total) {
		return nil, domain.ErrExceedsBalance
	}
	paid := req.InitialPayment
	balance := total.Sub(paid)

	invoiceDate := now
	if req.InvoiceDate != nil {
		invoiceDate = *req.InvoiceDate
	}

	inv := domain.Invoice{
		ID:             s.genID.Generate(),
		ShopID:         req.ShopID,
		CustomerID:     req.CustomerID,
		InvoiceDate:    invoiceDate,
		DueDate:        req.DueDate,
		Subtotal:       subtotal,
		TaxAmount:      req.TaxAmount,
		DiscountAmount: req.DiscountAmount,
		TotalAmount:    total,
		PaidAmount:     paid,
		BalanceAmount:  balance,
		Status:         domain.StatusFor(paid, balance),
		Notes:          strings.TrimSpace(req.Notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// The (shop_id, invoice_number) unique index arbitrates concurrent
	// creates; the whole transaction is retried with a fresh sequence on a
	// collision. A caller-supplied number is used as-is and never retried.
	var err error
	for attempt := 0; attempt < numberRetries; attempt++ {
		if req.InvoiceNumber != "" {
			inv.InvoiceNumber = req.InvoiceNumber
		} else {
			inv.InvoiceNumber, err = s.nextNumber(ctx, req.ShopID, now)
			if err != nil {
				return nil, err
			}
		}

		err = s.repo.Transaction(ctx, func(tx repository.Repository) error {
			if err := tx.InsertInvoice(ctx, &inv); err != nil {
				return err
			}
			for _, item := range req.Items {
				if err := s.writeSaleItem(ctx, tx, &inv, item); err != nil {
					return err
				}
			}
			if paid.IsPositive() {
				return tx.InsertPayment(ctx, s.initialPayment(&inv, req, now))
			}
			return nil
		})
		if err == nil {
			s.log.Info("invoice created",
				zap.String("invoice_number", inv.InvoiceNumber),
				zap.String("shop_id", inv.ShopID.String()))
			return &inv, nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return nil, err
		}
		if req.InvoiceNumber != "" {
			return nil, domain.ErrNumberConflict
		}
	}
	return nil, domain.ErrNumberConflict
}

// writeSaleItem records one line and walks the product stock down, clamped at
// zero.
func (s *Service) writeSaleItem(ctx context.Context, tx repository.Repository, inv *domain.Invoice, item domain.LineItem) error {
	product, err := tx.GetProduct(ctx, inv.ShopID, item.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrProductNotFound
	}

	err = tx.InsertItem(ctx, &domain.InvoiceItem{
		ID:          s.genID.Generate(),
		InvoiceID:   inv.ID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Unit:        product.Unit,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		TotalPrice:  item.Quantity.Mul(item.UnitPrice).Round(2),
		CreatedAt:   inv.CreatedAt,
	})
	if err != nil {
		return err
	}

	stock := product.StockQuantity - int(item.Quantity.IntPart())
	if stock < 0 {
		stock = 0
	}
	return tx.SetProductStock(ctx, product.ID, stock)
}

func (s *Service) initialPayment(inv *domain.Invoice, req domain.CreateInvoiceRequest, now time.Time) *domain.InvoicePayment {
	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		method = s.billingCfg.Get().DefaultPaymentMethod
	}
	paymentDate := now
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}
	notes := strings.TrimSpace(req.PaymentNotes)
	if notes == "" {
		notes = "Initial payment"
	}
	return &domain.InvoicePayment{
		ID:              s.genID.Generate(),
		InvoiceID:       inv.ID,
		Amount:          req.InitialPayment,
		PaymentMethod:   method,
		PaymentDate:     paymentDate,
		ReferenceNumber: strings.TrimSpace(req.ReferenceNumber),
		Notes:           notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (s *Service) nextNumber(ctx context.Context, shopID snowflake.ID, now time.Time) (string, error) {
	count, err := s.repo.CountByShop(ctx, shopID)
	if err != nil {
		return "", err
	}
	numbering := s.billingCfg.Get().Numbering
	return fmt.Sprintf("%s-%d-%s-%0*d",
		numbering.InvoicePrefix, shopID, now.Format("20060102"),
		numbering.SequenceWidth, count+1), nil
}

func (s *Service) GetByID(ctx context.Context, shopID, id snowflake.ID) (*domain.Invoice, error) {
	inv, err := s.repo.FindByID(ctx, shopID, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}

	filter := repository.ListFilter{
		Status: strings.TrimSpace(req.Status),
		Search: strings.TrimSpace(req.Search),
	}
	invoices, total, err := s.repo.List(ctx, req.ShopID, filter, page, limit)
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	out := make([]domain.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, *inv)
	}

	return domain.ListInvoiceResponse{
		PageInfo: pageInfo(page, limit, total),
		Invoices: out,
	}, nil
}

func (s *Service) ListByCustomer(ctx context.Context, shopID, customerID snowflake.ID) ([]domain.Invoice, error) {
	invoices, err := s.repo.ListByCustomer(ctx, shopID, customerID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, *inv)
	}
	return out, nil
}

func (s *Service) Items(ctx context.Context, shopID, invoiceID snowflake.ID) ([]domain.InvoiceItem, error) {
	if _, err := s.GetByID(ctx, shopID, invoiceID); err != nil {
		return nil, err
	}
	items, err := s.repo.Items(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.InvoiceItem, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out, nil
}

func (s *Service) Payments(ctx context.Context, shopID, invoiceID snowflake.ID) ([]domain.InvoicePayment, error) {
	if _, err := s.GetByID(ctx, shopID, invoiceID); err != nil {
		return nil, err
	}
	payments, err := s.repo.Payments(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.InvoicePayment, 0, len(payments))
	for _, p := range payments {
		out = append(out, *p)
	}
	return out, nil
}

func (s *Service) AddPayment(ctx context.Context, req domain.AddPaymentRequest) (*domain.Invoice, error) {
	if !req.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	now := s.clock.Now()
	var updated *domain.Invoice
	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		inv, err := tx.FindByID(ctx, req.ShopID, req.InvoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if req.Amount.GreaterThan(inv.BalanceAmount) {
			return domain.ErrExceedsBalance
		}

		method := strings.TrimSpace(req.PaymentMethod)
		if method == "" {
			method = s.billingCfg.Get().DefaultPaymentMethod
		}
		paymentDate := now
		if req.PaymentDate != nil {
			paymentDate = *req.PaymentDate
		}

		err = tx.InsertPayment(ctx, &domain.InvoicePayment{
			ID:              s.genID.Generate(),
			InvoiceID:       inv.ID,
			Amount:          req.Amount,
			PaymentMethod:   method,
			PaymentDate:     paymentDate,
			ReferenceNumber: strings.TrimSpace(req.ReferenceNumber),
			Notes:           strings.TrimSpace(req.Notes),
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			return err
		}

		inv.PaidAmount = inv.PaidAmount.Add(req.Amount)
		inv.BalanceAmount = inv.TotalAmount.Sub(inv.PaidAmount)
		inv.Status = domain.StatusFor(inv.PaidAmount, inv.BalanceAmount)
		inv.UpdatedAt = now

		err = tx.UpdateInvoiceFields(ctx, inv.ID, map[string]any{
			"paid_amount":    inv.PaidAmount,
			"balance_amount": inv.BalanceAmount,
			"status":         inv.Status,
			"updated_at":     now,
		})
		if err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) CanAddPayment(ctx context.Context, shopID, invoiceID snowflake.ID, amount decimal.Decimal) (bool, string, error) {
	inv, err := s.GetByID(ctx, shopID, invoiceID)
	if err != nil {
		return false, "", err
	}
	if !amount.IsPositive() {
		return false, "payment amount must be positive", nil
	}
	if amount.GreaterThan(inv.BalanceAmount) {
		return false, fmt.Sprintf("payment amount (%s) cannot exceed balance (%s)", amount, inv.BalanceAmount), nil
	}
	return true, "payment can be added", nil
}

func (s *Service) PaymentSummary(ctx context.Context, shopID, invoiceID snowflake.ID) (*domain.PaymentSummary, error) {
	inv, err := s.GetByID(ctx, shopID, invoiceID)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.Payments(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	methods := make(map[string]decimal.Decimal)
	for _, p := range payments {
		methods[p.PaymentMethod] = methods[p.PaymentMethod].Add(p.Amount)
	}

	now := s.clock.Now()
	return &domain.PaymentSummary{
		TotalPaid:      inv.PaidAmount,
		TotalBalance:   inv.BalanceAmount,
		PaymentCount:   len(payments),
		PaymentMethods: methods,
		IsOverdue:      inv.IsOverdue(now),
		DaysOverdue:    inv.DaysOverdue(now),
		Status:         inv.Status,
	}, nil
}

func (s *Service) CreateReturn(ctx context.Context, req domain.CreateReturnRequest) (*domain.Invoice, error) {
	if len(req.Items) == 0 {
		return nil, domain.ErrNoItems
	}
	for _, item := range req.Items {
		if !item.Quantity.IsPositive() || item.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidQuantity
		}
	}

	now := s.clock.Now()
	var ret *domain.Invoice
	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		original, err := tx.FindByID(ctx, req.ShopID, req.OriginalInvoiceID)
		if err != nil {
			return err
		}
		if original == nil {
			return domain.ErrNotFound
		}
		if original.IsReturn() {
			return domain.ErrReturnOfReturn
		}
		if original.Status == domain.StatusPaid {
			return domain.ErrOriginalPaid
		}

		if err := s.validateReturnQuantities(ctx, tx, original, req.Items); err != nil {
			return err
		}

		subtotal := decimal.Zero
		for _, item := range req.Items {
			subtotal = subtotal.Sub(item.Quantity.Mul(item.UnitPrice).Round(2))
		}
		tax := req.TaxAmount.Neg()
		discount := req.DiscountAmount.Neg()
		total := subtotal.Add(tax).Sub(discount)

		returnDate := now
		if req.ReturnDate != nil {
			returnDate = *req.ReturnDate
		}

		notes := fmt.Sprintf("Return for invoice %s.", original.InvoiceNumber)
		if extra := strings.TrimSpace(req.Notes); extra != "" {
			notes += " " + extra
		}

		inv := domain.Invoice{
			ID:                s.genID.Generate(),
			ShopID:            original.ShopID,
			CustomerID:        original.CustomerID,
			InvoiceDate:       returnDate,
			DueDate:           req.DueDate,
			Subtotal:          subtotal,
			TaxAmount:         tax,
			DiscountAmount:    discount,
			TotalAmount:       total,
			PaidAmount:        decimal.Zero,
			BalanceAmount:     total,
			Status:            domain.StatusPending,
			Notes:             notes,
			OriginalInvoiceID: &original.ID,
			CreatedAt:         now,
			UpdatedAt:         now,
		}

		if err := s.insertReturnInvoice(ctx, tx, &inv, original.InvoiceNumber); err != nil {
			return err
		}

		for _, item := range req.Items {
			if err := s.writeReturnItem(ctx, tx, &inv, item); err != nil {
				return err
			}
		}
		ret = &inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("return invoice created",
		zap.String("invoice_number", ret.InvoiceNumber),
		zap.String("original_id", req.OriginalInvoiceID.String()))
	return ret, nil
}

// validateReturnQuantities checks each return line against the original sale,
// net of everything already returned.
func (s *Service) validateReturnQuantities(ctx context.Context, tx repository.Repository, original *domain.Invoice, items []domain.ReturnItem) error {
	originalItems, err := tx.Items(ctx, original.ID)
	if err != nil {
		return err
	}
	sold := make(map[snowflake.ID]decimal.Decimal, len(originalItems))
	for _, item := range originalItems {
		sold[item.ProductID] = sold[item.ProductID].Add(item.Quantity)
	}

	returned, err := tx.ReturnedQuantities(ctx, original.ID)
	if err != nil {
		return err
	}

	for _, item := range items {
		soldQty, ok := sold[item.ProductID]
		if !ok {
			return domain.ErrNotOnInvoice
		}
		if item.Quantity.Add(returned[item.ProductID]).GreaterThan(soldQty) {
			return domain.ErrReturnTooLarge
		}
	}
	return nil
}

// insertReturnInvoice writes the header under RET-{original}, suffixing a
// sequence when earlier returns already took that number.
func (s *Service) insertReturnInvoice(ctx context.Context, tx repository.Repository, inv *domain.Invoice, originalNumber string) error {
	prefix := s.billingCfg.Get().Numbering.ReturnPrefix
	base := fmt.Sprintf("%s-%s", prefix, originalNumber)

	var err error
	for attempt := 0; attempt < numberRetries; attempt++ {
		inv.InvoiceNumber = base
		if attempt > 0 {
			inv.InvoiceNumber = fmt.Sprintf("%s-%d", base, attempt+1)
		}
		err = tx.InsertInvoice(ctx, inv)
		if err == nil {
			return nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return err
		}
	}
	return domain.ErrNumberConflict
}

// writeReturnItem records one negated line and walks the product stock back
// up.
func (s *Service) writeReturnItem(ctx context.Context, tx repository.Repository, inv *domain.Invoice, item domain.ReturnItem) error {
	product, err := tx.GetProduct(ctx, inv.ShopID, item.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrProductNotFound
	}

	quantity := item.Quantity.Neg()
	err = tx.InsertItem(ctx, &domain.InvoiceItem{
		ID:          s.genID.Generate(),
		InvoiceID:   inv.ID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Unit:        product.Unit,
		Quantity:    quantity,
		UnitPrice:   item.UnitPrice,
		TotalPrice:  quantity.Mul(item.UnitPrice).Round(2),
		CreatedAt:   inv.CreatedAt,
	})
	if err != nil {
		return err
	}

	stock := product.StockQuantity + int(item.Quantity.IntPart())
	return tx.SetProductStock(ctx, product.ID, stock)
}

func (s *Service) ReturnInvoices(ctx context.Context, shopID, invoiceID snowflake.ID) ([]domain.Invoice, error) {
	if _, err := s.GetByID(ctx, shopID, invoiceID); err != nil {
		return nil, err
	}
	returns, err := s.repo.ReturnInvoices(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Invoice, 0, len(returns))
	for _, inv := range returns {
		out = append(out, *inv)
	}
	return out, nil
}

func (s *Service) TotalReturns(ctx context.Context, shopID, invoiceID snowflake.ID) (decimal.Decimal, error) {
	if _, err := s.GetByID(ctx, shopID, invoiceID); err != nil {
		return decimal.Zero, err
	}
	returns, err := s.repo.ReturnInvoices(ctx, invoiceID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, inv := range returns {
		total = total.Add(inv.TotalAmount.Abs())
	}
	return total, nil
}

func (s *Service) NetAmount(ctx context.Context, shopID, invoiceID snowflake.ID) (decimal.Decimal, error) {
	inv, err := s.GetByID(ctx, shopID, invoiceID)
	if err != nil {
		return decimal.Zero, err
	}
	returns, err := s.TotalReturns(ctx, shopID, invoiceID)
	if err != nil {
		return decimal.Zero, err
	}
	return inv.TotalAmount.Sub(returns), nil
}

func (s *Service) Delete(ctx context.Context, shopID, invoiceID snowflake.ID) error {
	return s.repo.Transaction(ctx, func(tx repository.Repository) error {
		inv, err := tx.FindByID(ctx, shopID, invoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}

		count, err := tx.CountPayments(ctx, inv.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrHasPayments
		}

		if err := tx.DeleteItems(ctx, inv.ID); err != nil {
			return err
		}
		return tx.DeleteInvoice(ctx, inv.ID)
	})
}
