package billing_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"fieldos/internal/billing"
	"fieldos/internal/domain"
)

func priced(qty, unitPrice float64) domain.LineItem {
	return domain.LineItem{Kind: domain.LineItemPriced, Name: "Item", Quantity: qty, UnitPrice: unitPrice}
}

func TestComputeTotals_EmptyItems(t *testing.T) {
	for _, taxRate := range []float64{0, 10, 18, 100} {
		totals := billing.ComputeTotals(nil, domain.DiscountPercent, 25, taxRate)
		assert.Zero(t, totals.SubtotalBeforeDiscount)
		assert.Zero(t, totals.TaxAmount)
		assert.Zero(t, totals.Total)
		assert.Zero(t, totals.TotalSavings)
	}
}

func TestComputeTotals_DocumentPercentDiscountWithTax(t *testing.T) {
	items := []domain.LineItem{priced(2, 50)}

	totals := billing.ComputeTotals(items, domain.DiscountPercent, 10, 15)

	assert.InDelta(t, 100.0, totals.SubtotalBeforeDiscount, 1e-9)
	assert.InDelta(t, 10.0, totals.DiscountAmount, 1e-9)
	assert.InDelta(t, 13.5, totals.TaxAmount, 1e-9)
	assert.InDelta(t, 103.5, totals.Total, 1e-9)
	assert.InDelta(t, 115.0, totals.OriginalTotal, 1e-9)
	assert.InDelta(t, 11.5, totals.TotalSavings, 1e-9)
}

func TestComputeTotals_PerLineDiscounts(t *testing.T) {
	items := []domain.LineItem{
		{Kind: domain.LineItemPriced, Quantity: 4, UnitPrice: 25, DiscountType: domain.DiscountPercent, DiscountValue: 50},
		{Kind: domain.LineItemPriced, Quantity: 1, UnitPrice: 80, DiscountType: domain.DiscountAmount, DiscountValue: 30},
	}

	totals := billing.ComputeTotals(items, domain.DiscountAmount, 0, 0)

	assert.InDelta(t, 180.0, totals.SubtotalBeforeDiscount, 1e-9)
	assert.InDelta(t, 80.0, totals.LineDiscountTotal, 1e-9)
	assert.InDelta(t, 100.0, totals.Total, 1e-9)
	assert.InDelta(t, 80.0, totals.TotalSavings, 1e-9)
}

func TestComputeTotals_TextAndOptionalItemsExcluded(t *testing.T) {
	items := []domain.LineItem{
		priced(1, 200),
		{Kind: domain.LineItemText, Description: "Access through side gate"},
		{Kind: domain.LineItemPriced, Quantity: 3, UnitPrice: 500, Optional: true},
	}

	totals := billing.ComputeTotals(items, domain.DiscountAmount, 0, 10)

	assert.InDelta(t, 200.0, totals.SubtotalBeforeDiscount, 1e-9)
	assert.InDelta(t, 220.0, totals.Total, 1e-9)
}

func TestComputeTotals_DiscountExceedingSubtotalClamps(t *testing.T) {
	items := []domain.LineItem{priced(1, 50)}

	totals := billing.ComputeTotals(items, domain.DiscountAmount, 500, 20)

	assert.Zero(t, totals.Total)
	assert.GreaterOrEqual(t, totals.TotalSavings, 0.0)
	// Whole original amount is saved once the total clamps at zero.
	assert.InDelta(t, 60.0, totals.TotalSavings, 1e-9)
}

func TestComputeTotals_LineDiscountExceedingSubtotalClamps(t *testing.T) {
	items := []domain.LineItem{
		{Kind: domain.LineItemPriced, Quantity: 1, UnitPrice: 40, DiscountType: domain.DiscountAmount, DiscountValue: 100},
	}

	totals := billing.ComputeTotals(items, domain.DiscountAmount, 0, 15)

	assert.Zero(t, totals.Total)
	assert.InDelta(t, 100.0, totals.LineDiscountTotal, 1e-9)
}

func TestComputeTotals_NonFiniteInputsTreatedAsZero(t *testing.T) {
	items := []domain.LineItem{
		{Kind: domain.LineItemPriced, Quantity: math.NaN(), UnitPrice: 100},
		{Kind: domain.LineItemPriced, Quantity: 1, UnitPrice: math.Inf(1), DiscountType: domain.DiscountAmount, DiscountValue: math.NaN()},
		priced(2, 10),
	}

	totals := billing.ComputeTotals(items, domain.DiscountPercent, math.NaN(), 10)

	assert.InDelta(t, 20.0, totals.SubtotalBeforeDiscount, 1e-9)
	assert.InDelta(t, 22.0, totals.Total, 1e-9)
	assert.False(t, math.IsNaN(totals.TotalSavings))
}

func TestComputeTotals_NeverNegative(t *testing.T) {
	cases := []struct {
		name          string
		items         []domain.LineItem
		discountType  domain.DiscountType
		discountValue float64
		taxRate       float64
	}{
		{"huge percent discount", []domain.LineItem{priced(3, 33)}, domain.DiscountPercent, 400, 18},
		{"huge flat discount", []domain.LineItem{priced(1, 10)}, domain.DiscountAmount, 9999, 0},
		{"line discount larger than line", []domain.LineItem{{Kind: domain.LineItemPriced, Quantity: 1, UnitPrice: 5, DiscountType: domain.DiscountAmount, DiscountValue: 50}}, domain.DiscountAmount, 0, 12},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			totals := billing.ComputeTotals(tc.items, tc.discountType, tc.discountValue, tc.taxRate)
			assert.GreaterOrEqual(t, totals.Total, 0.0)
			assert.GreaterOrEqual(t, totals.TotalSavings, 0.0)
		})
	}
}
