package billing_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"fieldos/internal/billing"
	"fieldos/internal/domain"
)

func TestBalance_PaymentsAndCredits(t *testing.T) {
	invID := uuid.New()
	inv := &domain.Invoice{ID: invID, Status: domain.InvoiceStatusSent, Totals: domain.Totals{Total: 200}}
	payments := []domain.Payment{{Amount: 50}, {Amount: 50}}
	credit := invID
	all := []domain.Invoice{
		{ID: uuid.New(), IsCreditNote: true, CreditForInvoiceID: &credit, Totals: domain.Totals{Total: 20}},
	}

	assert.InDelta(t, 80.0, billing.Balance(inv, payments, all), 1e-9)
}

func TestBalance_CreditNoteHasNoBalance(t *testing.T) {
	other := uuid.New()
	cn := &domain.Invoice{ID: uuid.New(), IsCreditNote: true, CreditForInvoiceID: &other, Totals: domain.Totals{Total: 75}}

	assert.Zero(t, billing.Balance(cn, nil, nil))
}

func TestBalance_IgnoresCreditsForOtherInvoices(t *testing.T) {
	invID := uuid.New()
	otherID := uuid.New()
	inv := &domain.Invoice{ID: invID, Status: domain.InvoiceStatusSent, Totals: domain.Totals{Total: 100}}
	all := []domain.Invoice{
		{ID: uuid.New(), IsCreditNote: true, CreditForInvoiceID: &otherID, Totals: domain.Totals{Total: 40}},
		{ID: uuid.New(), IsCreditNote: false, Totals: domain.Totals{Total: 500}},
	}

	assert.InDelta(t, 100.0, billing.Balance(inv, nil, all), 1e-9)
}

func TestBalance_LegacyManualMarkAsPaid(t *testing.T) {
	inv := &domain.Invoice{ID: uuid.New(), Status: domain.InvoiceStatusPaid, Totals: domain.Totals{Total: 150}}

	assert.Zero(t, billing.Balance(inv, nil, nil))
}

func TestBalance_OverpaymentClampsToZero(t *testing.T) {
	inv := &domain.Invoice{ID: uuid.New(), Status: domain.InvoiceStatusSent, Totals: domain.Totals{Total: 100}}
	payments := []domain.Payment{{Amount: 120}}

	assert.Zero(t, billing.Balance(inv, payments, nil))
}
