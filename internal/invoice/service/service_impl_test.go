package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/shopstack/shopbill/internal/clock"
	"github.com/shopstack/shopbill/internal/config"
	"github.com/shopstack/shopbill/internal/invoice/domain"
	invoicerepo "github.com/shopstack/shopbill/internal/invoice/repository"
	invoiceservice "github.com/shopstack/shopbill/internal/invoice/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE customers (
			id BIGINT PRIMARY KEY,
			shop_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			phone TEXT,
			email TEXT,
			address TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE products (
			id BIGINT PRIMARY KEY,
			shop_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			category TEXT,
			brand TEXT,
			description TEXT,
			unit TEXT NOT NULL,
			price DECIMAL(12,2) NOT NULL,
			stock_quantity INTEGER NOT NULL DEFAULT 0,
			min_stock_level INTEGER NOT NULL DEFAULT 0,
			barcode TEXT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE invoices (
			id BIGINT PRIMARY KEY,
			shop_id BIGINT NOT NULL,
			customer_id BIGINT,
			invoice_number TEXT NOT NULL,
			invoice_date TIMESTAMP NOT NULL,
			due_date TIMESTAMP,
			subtotal DECIMAL(12,2) NOT NULL,
			tax_amount DECIMAL(12,2) NOT NULL DEFAULT 0,
			discount_amount DECIMAL(12,2) NOT NULL DEFAULT 0,
			total_amount DECIMAL(12,2) NOT NULL,
			paid_amount DECIMAL(12,2) NOT NULL DEFAULT 0,
			balance_amount DECIMAL(12,2) NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			notes TEXT,
			original_invoice_id BIGINT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE UNIQUE INDEX ux_invoices_shop_number ON invoices(shop_id, invoice_number)`,
		`CREATE TABLE invoice_items (
			id BIGINT PRIMARY KEY,
			invoice_id BIGINT NOT NULL,
			product_id BIGINT NOT NULL,
			product_name TEXT NOT NULL,
			unit TEXT NOT NULL,
			quantity DECIMAL(12,2) NOT NULL,
			unit_price DECIMAL(12,2) NOT NULL,
			total_price DECIMAL(12,2) NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE invoice_payments (
			id BIGINT PRIMARY KEY,
			invoice_id BIGINT NOT NULL,
			amount DECIMAL(12,2) NOT NULL,
			payment_method TEXT NOT NULL,
			payment_date TIMESTAMP NOT NULL,
			reference_number TEXT,
			notes TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

type fixture struct {
	svc   domain.Service
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	shop  snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := setupTestDB(t)
	node, err := snowflake.NewNode(11)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	fake := clock.NewFakeClock(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))

	svc := invoiceservice.New(invoiceservice.Params{
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      fake,
		Repo:       invoicerepo.Provide(db),
		BillingCfg: config.NewStaticBillingConfig(config.DefaultBillingConfig()),
	})

	return &fixture{svc: svc, db: db, node: node, clock: fake, shop: node.Generate()}
}

func (f *fixture) seedProduct(t *testing.T, name string, price string, stock int) snowflake.ID {
	t.Helper()

	id := f.node.Generate()
	err := f.db.Exec(
		`INSERT INTO products (id, shop_id, name, unit, price, stock_quantity, min_stock_level, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, 'pcs', ?, ?, 0, TRUE, ?, ?)`,
		id, f.shop, name, price, stock, f.clock.Now(), f.clock.Now(),
	).Error
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return id
}

func (f *fixture) productStock(t *testing.T, id snowflake.ID) int {
	t.Helper()

	var stock int
	if err := f.db.Raw("SELECT stock_quantity FROM products WHERE id = ?", id).Scan(&stock).Error; err != nil {
		t.Fatalf("read stock: %v", err)
	}
	return stock
}

func assertCount(t *testing.T, db *gorm.DB, query string, expected int64) {
	t.Helper()

	var count int64
	if err := db.Raw(query).Scan(&count).Error; err != nil {
		t.Fatalf("query count: %v", err)
	}
	if count != expected {
		t.Fatalf("expected %d, got %d", expected, count)
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateInvoiceComputesTotals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p1 := f.seedProduct(t, "Rice", "45.50", 100)
	p2 := f.seedProduct(t, "Oil", "120.00", 50)

	inv, err := f.svc.Create(ctx, domain.CreateInvoiceRequest{
		ShopID:         f.shop,
		TaxAmount:      dec("10"),
		DiscountAmount: dec("5"),
		Items: []domain.LineItem{
			{ProductID: p1, Quantity: dec("2"), UnitPrice: dec("45.50")},
			{ProductID: p2, Quantity: dec("1"), UnitPrice: dec("120.00")},
		},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	if !inv.Subtotal.Equal(dec("211.00")) {
		t.Fatalf("expected subtotal 211.00, got %s", inv.Subtotal)
	}
	if !inv.TotalAmount.Equal(dec("216.00")) {
		t.Fatalf("expected total 216.00, got %s", inv.TotalAmount)
	}
	if !inv.BalanceAmount.Equal(inv.TotalAmount) {
		t.Fatalf("expected balance == total, got %s", inv.BalanceAmount)
	}
	if inv.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %s", inv.Status)
	}
	assertCount(t, f.db, "SELECT COUNT(1) FROM invoice_items", 2)
}

func TestCreateInvoiceDecrementsStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedProduct(t, "Sugar", "10.00", 20)

	_, err := f.svc.Create(ctx, domain.CreateInvoiceRequest{
		ShopID: f.shop,
		Items:  []domain.LineItem{{ProductID: p, Quantity: dec("3"), UnitPrice: dec("10.00")}},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	if stock := f.productStock(t, p); stock != 17 {
		t.Fatalf("expected stock 17, got %d", stock)
	}
}

func TestCreateInvoiceStockClampedAtZero(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedProduct(t, "Salt", "5.00", 2)

	_, err := f.svc.Create(ctx, domain.CreateInvoiceRequest{
		ShopID: f.shop,
		Items:  []domain.LineItem{{ProductID: p, Quantity: dec("5"), UnitPrice: dec("5.00")}},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	if stock := f.productStock(t, p); stock != 0 {
		t.Fatalf("expected stock clamped to 0, got %d", stock)
	}
}

func TestCreateInvoiceUnknownProductRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedProduct(t, "Tea", "80.00", 10)

	_, err := f.svc.Create(ctx, domain.CreateInvoiceRequest{
		ShopID: f.shop,
		Items: []domain.LineItem{
			{ProductID: p, Quantity: dec("1"), UnitPrice: dec("80.00")},
			{ProductID: f.node.Generate(), Quantity: dec("1"), UnitPrice: dec("1.00")},
		},
	})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	assertCount(t, f.db, "SELECT COUNT(1) FROM invoices", 0)
	assertCount(t, f.db, "SELECT COUNT(1) FROM invoice_items", 0)
	if stock := f.productStock(t, p); stock != 10 {
		t.Fatalf("expected stock untouched at 10, got %d", stock)
	}
}

func TestSequentialInvoiceNumbersAreDistinct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedProduct(t, "Flour", "30.00", 100)

	first, err := f.svc.Create(ctx, domain.CreateInvoiceRequest{
		ShopID: f.shop,
		Items:  []domain.LineItem{{ProductID: p, Quantity: dec("1"), UnitPrice: dec("30.00")}},
	})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := f.svc.Create(ctx, domain.CreateInvoiceRequest{
		ShopID: f.shop,
		Items:  []domain.LineItem{{ProductID: p, Quantity: dec("1"), UnitPrice: dec("30.00")}},
	})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	if first.InvoiceNumber == second.InvoiceNumber {
		t.Fatalf("expected distinct numbers, both %s", first.InvoiceNumber)
	}
	want := fmt.Sprintf("INV-%d-20240315-0001", f.shop)
	if first.InvoiceNumber != want {
		t.Fatalf("expected %s, got %s", want, first.InvoiceNumber)
	}
}

func TestInitialPaymentValidatedAndRecorded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedProduct(t, "Milk", "25.00", 40)

	_, err := f.svc.Create(ctx, domain.CreateInvoiceRequest{
		ShopID:         f.shop,
		InitialPayment: dec("100.00"),
		Items:          []domain.LineItem{{ProductID: p, Quantity: dec("2"), UnitPrice: dec("25.00")}},
	})
	if !errors.Is(err, domain.ErrExceedsBalance) {
		t.Fatalf("expected ErrExceedsBalance for oversized initial payment, got %v", err)
	}

	inv, err := f.svc.Create(ctx, domain.CreateInvoiceRequest{
		ShopID:         f.shop,
		InitialPayment: dec("20.00"),
		Items:          []domain.LineItem{{ProductID: p, Quantity: dec("2"), UnitPrice: dec("25.00")}},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if inv.Status != domain.StatusPartial {
		t.Fatalf("expected partial, got %s", inv.Status)
	}
	if !inv.PaidAmount.Equal(dec("20.00")) || !inv.BalanceAmount.Equal(dec("30.00")) {
		t.Fatalf("expected paid 20 balance 30, got %s / %s", inv.PaidAmount, inv.BalanceAmount)
	}

	payments, err := f.svc.Payments(ctx, f.shop, inv.ID)
	if err != nil {
		t.Fatalf("payments: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(payments))
	}
	if payments[0].PaymentMethod != "cash" || payments[0].Notes != "Initial payment" {
		t.Fatalf("expected cash/Initial payment defaults, got %s/%s", payments[0].PaymentMethod, payments[0].Notes)
	}
}

func TestAddPaymentKeepsBalanceInvariant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedProduct(t, "Soap", "50.00", 30)

	inv, err := f.svc.Create(ctx, domain.CreateInvoiceRequest{
		ShopID: f.shop,
		Items:  []domain.LineItem{{ProductID: p, Quantity: dec("2"), UnitPrice: dec("50.00")}},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	inv, err = f.svc.AddPayment(ctx, domain.AddPaymentRequest{
		ShopID:    f.shop,
		InvoiceID: inv.ID,
		Amount:    dec("40.00"),
	})
	if err != nil {
		t.Fatalf("add payment: %v", err)
	}
	if inv.Status != domain.StatusPartial {
		t.Fatalf("expected partial, got %s", inv.Status)
	}
	if !inv.PaidAmount.Add(inv.BalanceAmount).Equal(inv.TotalAmount) {
		t.Fatalf("paid+balance != total: %s + %s != %s", inv.PaidAmount, inv.BalanceAmount, inv.TotalAmount)
	}

	inv, err = f.svc.AddPayment(ctx, domain.AddPaymentRequest{
		ShopID:    f.shop,
		InvoiceID: inv.ID,
		Amount:    dec("60.00"),
	})
	if err != nil {
		t.Fatalf("add final payment: %v", err)
	}
	if inv.Status != domain.StatusPaid {
		t.Fatalf("expected paid, got %s", inv.Status)
	}
	if !inv.BalanceAmount.IsZero() {
		t.Fatalf("expected zero balance, got %s", inv.BalanceAmount)
	}
}

func TestAddPaymentRejectionsDoNotMutate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedProduct(t, "Butter", "75.00", 10)

	inv, err := f.svc.Create(ctx, domain.CreateInvoiceRequest{
		ShopID: f.shop,
		Items:  []domain.LineItem{{ProductID: p, Quantity: dec("1"), UnitPrice: dec("75.00")}},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	_, err = f.svc.AddPayment(ctx, domain.AddPaymentRequest{ShopID: f.shop, InvoiceID: inv.ID, Amount: dec("0")})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	_, err = f.svc.AddPayment(ctx, domain.AddPaymentRequest{ShopID: f.shop, InvoiceID: inv.ID, Amount: dec("-5")})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	_, err = f.svc.AddPayment(ctx, domain.AddPaymentRequest{ShopID: f.shop, InvoiceID: inv.ID, Amount: dec("100.00")})
	if !errors.Is(err, domain.ErrExceedsBalance) {
		t.Fatalf("expected ErrExceedsBalance, got %v", err)
	}

	reloaded, err := f.svc.GetByID(ctx, f.shop, inv.ID)
	if err != nil {
		t.Fatalf("get invoice: %v", err)
	}
	if !reloaded.PaidAmount.IsZero() || reloaded.Status != domain.StatusPending {
		t.Fatalf("invoice mutated by rejected payments: paid=%s status=%s", reloaded.PaidAmount, reloaded.Status)
	}
	assertCount(t, f.db, "SELECT COUNT(1) FROM invoice_payments", 0)

	ok, reason, err := f.svc.CanAddPayment(ctx, f.shop, inv.ID, dec("100.00"))
	if err != nil {
		t.Fatalf("can add payment: %v", err)
	}
	if ok || reason == "" {
		t.Fatalf("expected advisory rejection, got ok=%v reason=%q", ok, reason)
	}
}

func TestCreateReturnInvoice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedProduct(t, "Notebook", "10.00", 20)

	inv, err := f.svc.Create(ctx, domain.CreateInvoiceRequest{
		ShopID: f.shop,
		Items:  []domain.LineItem{{ProductID: p, Quantity: dec("3"), UnitPrice: dec("10.00")}},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if stock := f.productStock(t, p); stock != 17 {
		t.Fatalf("expected stock 17 after sale, got %d", stock)
	}

	ret, err := f.svc.CreateReturn(ctx, domain.CreateReturnRequest{
		ShopID:            f.shop,
		OriginalInvoiceID: inv.ID,
		Items:             []domain.ReturnItem{{ProductID: p, Quantity: dec("1"), UnitPrice: dec("10.00")}},
	})
	if err != nil {
		t.Fatalf("create return: %v", err)
	}

	if !ret.Subtotal.Equal(dec("-10.00")) || !ret.TotalAmount.Equal(dec("-10.00")) {
		t.Fatalf("expected subtotal/total -10, got %s / %s", ret.Subtotal, ret.TotalAmount)
	}
	if ret.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %s", ret.Status)
	}
	if !ret.PaidAmount.IsZero() || !ret.BalanceAmount.Equal(ret.TotalAmount) {
		t.Fatalf("expected paid 0 balance == total, got %s / %s", ret.PaidAmount, ret.BalanceAmount)
	}
	wantNumber := "RET-" + inv.InvoiceNumber
	if ret.InvoiceNumber != wantNumber {
		t.Fatalf("expected %s, got %s", wantNumber, ret.InvoiceNumber)
	}
	wantNote := fmt.Sprintf("Return for invoice %s.", inv.InvoiceNumber)
	if ret.Notes != wantNote {
		t.Fatalf("expected note %q, got %q", wantNote, ret.Notes)
	}
	if stock := f.productStock(t, p); stock != 18 {
		t.Fatalf("expected stock restored to 18, got %d", stock)
	}

	items, err := f.svc.Items(ctx, f.shop, ret.ID)
	if err != nil {
		t.Fatalf("return items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 return item, got %d", len(items))
	}
	if !items[0].Quantity.Equal(dec("-1")) || !items[0].UnitPrice.Equal(dec("10.00")) || !items[0].TotalPrice.Equal(dec("-10.00")) {
		t.Fatalf("unexpected return line: qty=%s price=%s total=%s", items[0].Quantity, items[0].UnitPrice, items[0].TotalPrice)
	}

	total, err := f.svc.TotalReturns(ctx, f.shop, inv.ID)
	if err != nil {
		t.Fatalf("total returns: %v", err)
	}
	if !total.Equal(dec("10.00")) {
		t.Fatalf("expected total returns 10, got %s", total)
	}
	net, err := f.svc.NetAmount(ctx, f.shop, inv.ID)
	if err != nil {
		t.Fatalf("net amount: %v", err)
	}
	if !net.Equal(dec("20.00")) {
		t.Fatalf("expected net 20, got %s", net)
	}
}

func TestReturnInvoiceRejectsPayments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedProduct(t, "Notebook", "10.00", 20)

	inv, err := f.svc.Create(ctx, domain.CreateInvoiceRequest{
		ShopID: f.shop,
		Items:  []domain.LineItem{{ProductID: p, Quantity: dec("2"), UnitPrice: dec("10.00")}},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	ret, err := f.svc.CreateReturn(ctx, domain.CreateReturnRequest{
		ShopID:            f.shop,
		OriginalInvoiceID: inv.ID,
		Items:             []domain.ReturnItem{{ProductID: p, Quantity: dec("1"), UnitPrice: dec("10.00")}},
	})
	if err != nil {
		t.Fatalf("create return: %v", err)
	}

	// Any positive payment exceeds a return invoice's negative balance.
	if _, err := f.svc.AddPayment(ctx, domain.AddPaymentRequest{
		ShopID:    f.shop,
		InvoiceID: ret.ID,
		Amount:    dec("5.00"),
	}); !errors.Is(err, domain.ErrExceedsBalance) {
		t.Fatalf("expected ErrExceedsBalance, got %v", err)
	}

	got, err := f.svc.GetByID(ctx, f.shop, ret.ID)
	if err != nil {
		t.Fatalf("reload return: %v", err)
	}
	if got.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %s", got.Status)
	}
	if !got.PaidAmount.IsZero() || !got.BalanceAmount.Equal(got.TotalAmount) {
		t.Fatalf("expected paid 0 balance == total, got %s / %s", got.PaidAmount, got.BalanceAmount)
	}
	assertCount(t, f.db, "SELECT COUNT(1) FROM invoice_payments", 0)
}

func TestReturnQuantityValidatedCumulatively(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedProduct(t, "Pen", "5.00", 50)

	inv, err := f.svc.Create(ctx, domain.CreateInvoiceRequest{
		ShopID: f.shop,
		Items:  []domain.LineItem{{ProductID: p, Quantity: dec("3"), UnitPrice: dec("5.00")}},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	_, err = f.svc.CreateReturn(ctx, domain.CreateReturnRequest{
		ShopID:            f.shop,
		OriginalInvoiceID: inv.ID,
		Items:             []domain.ReturnItem{{ProductID: p, Quantity: dec("2"), UnitPrice: dec("5.00")}},
	})
	if err != nil {
		t.Fatalf("first return: %v", err)
	}

	// Two already returned out of three sold; two more must not pass.
	_, err = f.svc.CreateReturn(ctx, domain.CreateReturnRequest{
		ShopID:            f.shop,
		OriginalInvoiceID: inv.ID,
		Items:             []domain.ReturnItem{{ProductID: p, Quantity: dec("2"), UnitPrice: dec("5.00")}},
	})
	if !errors.Is(err, domain.ErrReturnTooLarge) {
		t.Fatalf("expected ErrReturnTooLarge, got %v", err)
	}

	ret, err := f.svc.CreateReturn(ctx, domain.CreateReturnRequest{
		ShopID:            f.shop,
		OriginalInvoiceID: inv.ID,
		Items:             []domain.ReturnItem{{ProductID: p, Quantity: dec("1"), UnitPrice: dec("5.00")}},
	})
	if err != nil {
		t.Fatalf("second return: %v", err)
	}
	if ret.InvoiceNumber != "RET-"+inv.InvoiceNumber+"-2" {
		t.Fatalf("expected suffixed return number, got %s", ret.InvoiceNumber)
	}
}

func TestReturnRejectedForPaidOrForeignProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedProduct(t, "Basket", "40.00", 10)
	other := f.seedProduct(t, "Rope", "15.00", 10)

	inv, err := f.svc.Create(ctx, domain.CreateInvoiceRequest{
		ShopID: f.shop,
		Items:  []domain.LineItem{{ProductID: p, Quantity: dec("1"), UnitPrice: dec("40.00")}},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	_, err = f.svc.CreateReturn(ctx, domain.CreateReturnRequest{
		ShopID:            f.shop,
		OriginalInvoiceID: inv.ID,
		Items:             []domain.ReturnItem{{ProductID: other, Quantity: dec("1"), UnitPrice: dec("15.00")}},
	})
	if !errors.Is(err, domain.ErrNotOnInvoice) {
		t.Fatalf("expected ErrNotOnInvoice, got %v", err)
	}

	if _, err := f.svc.AddPayment(ctx, domain.AddPaymentRequest{ShopID: f.shop, InvoiceID: inv.ID, Amount: dec("40.00")}); err != nil {
		t.Fatalf("pay in full: %v", err)
	}
	_, err = f.svc.CreateReturn(ctx, domain.CreateReturnRequest{
		ShopID:            f.shop,
		OriginalInvoiceID: inv.ID,
		Items:             []domain.ReturnItem{{ProductID: p, Quantity: dec("1"), UnitPrice: dec("40.00")}},
	})
	if !errors.Is(err, domain.ErrOriginalPaid) {
		t.Fatalf("expected ErrOriginalPaid, got %v", err)
	}
}

func TestOverdueDerivation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedProduct(t, "Lamp", "60.00", 10)

	due := f.clock.Now().AddDate(0, 0, 2)
	inv, err := f.svc.Create(ctx, domain.CreateInvoiceRequest{
		ShopID:  f.shop,
		DueDate: &due,
		Items:   []domain.LineItem{{ProductID: p, Quantity: dec("1"), UnitPrice: dec("60.00")}},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	if inv.IsOverdue(f.clock.Now()) {
		t.Fatal("not yet due, expected not overdue")
	}

	f.clock.Advance(5 * 24 * time.Hour)
	if !inv.IsOverdue(f.clock.Now()) {
		t.Fatal("expected overdue after due date")
	}
	if days := inv.DaysOverdue(f.clock.Now()); days != 3 {
		t.Fatalf("expected 3 days overdue, got %d", days)
	}

	summary, err := f.svc.PaymentSummary(ctx, f.shop, inv.ID)
	if err != nil {
		t.Fatalf("payment summary: %v", err)
	}
	if !summary.IsOverdue || summary.DaysOverdue != 3 {
		t.Fatalf("expected overdue summary, got %+v", summary)
	}

	if _, err := f.svc.AddPayment(ctx, domain.AddPaymentRequest{ShopID: f.shop, InvoiceID: inv.ID, Amount: dec("60.00")}); err != nil {
		t.Fatalf("pay: %v", err)
	}
	paid, err := f.svc.GetByID(ctx, f.shop, inv.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if paid.IsOverdue(f.clock.Now()) {
		t.Fatal("paid invoice must not be overdue")
	}
}

func TestDeleteInvoiceOnlyWithoutPayments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedProduct(t, "Chair", "90.00", 10)

	inv, err := f.svc.Create(ctx, domain.CreateInvoiceRequest{
		ShopID: f.shop,
		Items:  []domain.LineItem{{ProductID: p, Quantity: dec("1"), UnitPrice: dec("90.00")}},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if _, err := f.svc.AddPayment(ctx, domain.AddPaymentRequest{ShopID: f.shop, InvoiceID: inv.ID, Amount: dec("10.00")}); err != nil {
		t.Fatalf("add payment: %v", err)
	}

	if err := f.svc.Delete(ctx, f.shop, inv.ID); !errors.Is(err, domain.ErrHasPayments) {
		t.Fatalf("expected ErrHasPayments, got %v", err)
	}

	clean, err := f.svc.Create(ctx, domain.CreateInvoiceRequest{
		ShopID: f.shop,
		Items:  []domain.LineItem{{ProductID: p, Quantity: dec("1"), UnitPrice: dec("90.00")}},
	})
	if err != nil {
		t.Fatalf("create second invoice: %v", err)
	}
	if err := f.svc.Delete(ctx, f.shop, clean.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	assertCount(t, f.db, "SELECT COUNT(1) FROM invoices", 1)
	assertCount(t, f.db, fmt.Sprintf("SELECT COUNT(1) FROM invoice_items WHERE invoice_id = %d", clean.ID), 0)
}

func TestInvoiceJSONRoundTripKeepsAmounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedProduct(t, "Scale", "33.33", 10)

	inv, err := f.svc.Create(ctx, domain.CreateInvoiceRequest{
		ShopID:    f.shop,
		TaxAmount: dec("0.01"),
		Items:     []domain.LineItem{{ProductID: p, Quantity: dec("3"), UnitPrice: dec("33.33")}},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	raw, err := json.Marshal(inv)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded domain.Invoice
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !decoded.Subtotal.Equal(inv.Subtotal) ||
		!decoded.TotalAmount.Equal(inv.TotalAmount) ||
		!decoded.BalanceAmount.Equal(inv.BalanceAmount) {
		t.Fatalf("amounts drifted through JSON: %s vs %s", raw, decoded.TotalAmount)
	}
	if !decoded.TotalAmount.Equal(dec("100.00")) {
		t.Fatalf("expected total 100.00, got %s", decoded.TotalAmount)
	}
}

func TestWalkInCustomerStoredAsNull(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedProduct(t, "Mug", "12.00", 10)

	inv, err := f.svc.Create(ctx, domain.CreateInvoiceRequest{
		ShopID:     f.shop,
		CustomerID: nil,
		Items:      []domain.LineItem{{ProductID: p, Quantity: dec("1"), UnitPrice: dec("12.00")}},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if inv.CustomerID != nil {
		t.Fatalf("expected nil customer, got %v", inv.CustomerID)
	}
	assertCount(t, f.db, fmt.Sprintf("SELECT COUNT(1) FROM invoices WHERE id = %d AND customer_id IS NULL", inv.ID), 1)
}
