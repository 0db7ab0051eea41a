package export

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldos/internal/domain"
)

func TestBuildInvoiceWorkbook(t *testing.T) {
	inv := domain.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "INV-0007",
		Subject:       "Fence repair",
		Status:        domain.InvoiceStatusUnpaid,
		IssueDate:     time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		DueTerm:       "Net 14",
		DueDate:       time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC),
		CreatedAt:     time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	inv.Total = 350

	f, err := BuildInvoiceWorkbook([]domain.Invoice{inv}, map[uuid.UUID]float64{inv.ID: 150})
	require.NoError(t, err)
	defer f.Close()

	number, err := f.GetCellValue(ledgerSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "INV-0007", number)

	status, err := f.GetCellValue(ledgerSheet, "C2")
	require.NoError(t, err)
	assert.Equal(t, "unpaid", status)

	total, err := f.GetCellValue(ledgerSheet, "K2")
	require.NoError(t, err)
	assert.Equal(t, "350.00", total)

	balance, err := f.GetCellValue(ledgerSheet, "L2")
	require.NoError(t, err)
	assert.Equal(t, "150.00", balance)

	// Totals row sits two below the last invoice row.
	label, err := f.GetCellValue(ledgerSheet, "G4")
	require.NoError(t, err)
	assert.Equal(t, "Totals", label)
}
