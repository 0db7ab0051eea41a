// Package billing holds the pure money math of the engine: document totals,
// due-date resolution, balance reconciliation, and sequence number
// formatting. Nothing here touches the store or the clock.
package billing

import (
	"math"

	"fieldos/internal/domain"
)

// ComputeTotals derives a document's money fields from its line items,
// document-level discount, and tax rate. The order of operations is fixed:
// line subtotals, per-line discounts, document discount on the discounted
// subtotal, then tax on what remains. Intermediate negative values are
// clamped to zero rather than rejected, since oversized discounts are
// routine data-entry mistakes that must not block saving. Non-finite
// inputs contribute zero.
//
// Text items and items marked optional are skipped entirely; they stay in
// the persisted list for display only.
func ComputeTotals(items []domain.LineItem, discountType domain.DiscountType, discountValue, taxRatePercent float64) domain.Totals {
	taxRatePercent = finiteOrZero(taxRatePercent)

	var subtotal, lineDiscounts float64
	for _, it := range items {
		if it.Kind != domain.LineItemPriced || it.Optional {
			continue
		}
		lineSubtotal := finiteOrZero(it.Quantity * it.UnitPrice)
		subtotal += lineSubtotal

		var d float64
		if it.DiscountType == domain.DiscountPercent {
			d = lineSubtotal * it.DiscountValue / 100
		} else {
			d = it.DiscountValue
		}
		lineDiscounts += finiteOrZero(d)
	}

	discountedSubtotal := math.Max(0, subtotal-lineDiscounts)

	var docDiscount float64
	if discountType == domain.DiscountPercent {
		docDiscount = discountedSubtotal * discountValue / 100
	} else {
		docDiscount = discountValue
	}
	docDiscount = finiteOrZero(docDiscount)

	afterDiscounts := math.Max(0, discountedSubtotal-docDiscount)
	taxAmount := afterDiscounts * taxRatePercent / 100
	total := afterDiscounts + taxAmount

	// What the client would have paid with no discounts at all.
	originalTotal := subtotal + subtotal*taxRatePercent/100

	return domain.Totals{
		SubtotalBeforeDiscount: subtotal,
		LineDiscountTotal:      lineDiscounts,
		DiscountAmount:         docDiscount,
		TaxAmount:              taxAmount,
		Total:                  total,
		OriginalTotal:          originalTotal,
		TotalSavings:           math.Max(0, originalTotal-total),
	}
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
