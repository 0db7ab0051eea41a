package billing

import (
	"math"

	"fieldos/internal/domain"
)

// Balance reconciles an invoice's outstanding amount from its total, its
// recorded payments, and any credit notes referencing it. Credit notes
// carry no balance of their own. An invoice marked Paid with no recorded
// payments is a legacy manual mark-as-paid and reconciles to zero.
func Balance(inv *domain.Invoice, payments []domain.Payment, allInvoices []domain.Invoice) float64 {
	if inv.IsCreditNote {
		return 0
	}

	var paid float64
	for _, p := range payments {
		paid += p.Amount
	}

	var credits float64
	for _, other := range allInvoices {
		if other.IsCreditNote && other.CreditForInvoiceID != nil && *other.CreditForInvoiceID == inv.ID {
			credits += other.Total
		}
	}

	if inv.Status == domain.InvoiceStatusPaid && paid == 0 {
		return 0
	}

	return math.Max(0, inv.Total-paid-credits)
}
