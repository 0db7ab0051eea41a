package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldos/internal/domain"
)

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 15)
	assert.Equal(t, "Invoice Number", row[0])
	assert.Equal(t, "Balance", row[11])
	assert.Equal(t, "Created At", row[14])
}

func TestWriteInvoices(t *testing.T) {
	sentAt := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	inv := domain.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "INV-0042",
		Subject:       "Gutter cleaning",
		Status:        domain.InvoiceStatusSent,
		IssueDate:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		DueTerm:       "Net 30",
		DueDate:       time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		SentAt:        &sentAt,
		CreatedAt:     time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	inv.SubtotalBeforeDiscount = 200
	inv.DiscountAmount = 20
	inv.TaxAmount = 18
	inv.Total = 198

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteInvoices([]domain.Invoice{inv}, map[uuid.UUID]float64{inv.ID: 98}))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 15)
	assert.Equal(t, "INV-0042", row[0])
	assert.Equal(t, "Gutter cleaning", row[1])
	assert.Equal(t, "sent", row[2])
	assert.Equal(t, "No", row[3])
	assert.Equal(t, "2025-03-01", row[4])
	assert.Equal(t, "Net 30", row[5])
	assert.Equal(t, "2025-03-31", row[6])
	assert.Equal(t, "200.00", row[7])
	assert.Equal(t, "20.00", row[8])
	assert.Equal(t, "18.00", row[9])
	assert.Equal(t, "198.00", row[10])
	assert.Equal(t, "98.00", row[11])
	assert.Equal(t, "2025-03-01T09:00:00Z", row[12])
	assert.Equal(t, "", row[13])
	assert.Equal(t, "2025-03-01T08:00:00Z", row[14])
}

func TestWriteInvoices_CreditNote(t *testing.T) {
	target := uuid.New()
	note := domain.Invoice{
		ID:                 uuid.New(),
		InvoiceNumber:      "INV-0043",
		Subject:            "Credit note for INV-0042",
		Status:             domain.InvoiceStatusSent,
		IsCreditNote:       true,
		CreditForInvoiceID: &target,
		IssueDate:          time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		DueDate:            time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		CreatedAt:          time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
	}
	note.Total = 50

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteInvoices([]domain.Invoice{note}, nil))
	w.Flush()

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Equal(t, "Yes", row[3])
	assert.Equal(t, "0.00", row[11], "credit notes carry no balance")
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Acme Plumbing", "Acme_Plumbing"},
		{"special chars", "Bob's Lawn / Garden (Est. 1999)", "Bob_s_Lawn_Garden_Est_1999"},
		{"hyphens and underscores preserved", "north-side_crew", "north-side_crew"},
		{"consecutive underscores collapsed", "test___tenant", "test_tenant"},
		{"leading/trailing cleaned", "  hello  ", "hello"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestBuildFilename(t *testing.T) {
	filename := BuildFilename("Acme Plumbing", "csv")
	today := time.Now().Format("2006-01-02")
	assert.Equal(t, "Acme_Plumbing_invoices_"+today+".csv", filename)
}
