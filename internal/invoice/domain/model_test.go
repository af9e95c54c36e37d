package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	dec := func(s string) decimal.Decimal {
		d, err := decimal.NewFromString(s)
		if err != nil {
			t.Fatalf("bad decimal %q: %v", s, err)
		}
		return d
	}

	assert.Equal(t, StatusPending, StatusFor(dec("0"), dec("100")))
	assert.Equal(t, StatusPartial, StatusFor(dec("40"), dec("60")))
	assert.Equal(t, StatusPaid, StatusFor(dec("100"), dec("0")))
	assert.Equal(t, StatusPaid, StatusFor(dec("120"), dec("-20")))
	// A return invoice: negative total, zero paid.
	assert.Equal(t, StatusPaid, StatusFor(dec("0"), dec("-50")))
}

func TestOverdueByCalendarDay(t *testing.T) {
	due := time.Date(2024, 3, 10, 18, 30, 0, 0, time.UTC)
	inv := Invoice{DueDate: &due, Status: StatusPending}

	// Same day, later hour: not yet overdue.
	assert.False(t, inv.IsOverdue(time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, inv.DaysOverdue(time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)))

	// Next morning counts as one day.
	assert.True(t, inv.IsOverdue(time.Date(2024, 3, 11, 1, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, inv.DaysOverdue(time.Date(2024, 3, 11, 1, 0, 0, 0, time.UTC)))

	assert.Equal(t, 5, inv.DaysOverdue(time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)))
}

func TestOverdueIgnoredWhenPaidOrUndated(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

	due := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	paid := Invoice{DueDate: &due, Status: StatusPaid}
	assert.False(t, paid.IsOverdue(now))
	assert.Equal(t, 0, paid.DaysOverdue(now))

	undated := Invoice{Status: StatusPending}
	assert.False(t, undated.IsOverdue(now))
}

func TestIsReturn(t *testing.T) {
	assert.False(t, Invoice{}.IsReturn())

	original := Invoice{}
	original.ID = 42
	ret := Invoice{OriginalInvoiceID: &original.ID}
	assert.True(t, ret.IsReturn())
}
