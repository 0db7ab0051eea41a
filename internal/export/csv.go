package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"fieldos/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// invoiceColumns defines the CSV header row for the invoice ledger.
var invoiceColumns = []string{
	"Invoice Number",
	"Subject",
	"Status",
	"Credit Note",
	"Issue Date",
	"Due Term",
	"Due Date",
	"Subtotal",
	"Discount",
	"Tax",
	"Total",
	"Balance",
	"Sent At",
	"Paid At",
	"Created At",
}

// Writer wraps csv.Writer for exporting the invoice ledger as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the ledger header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(invoiceColumns)
}

// WriteInvoices converts a batch of invoices to CSV rows and writes them.
// balances maps invoice id to its reconciled outstanding amount.
func (w *Writer) WriteInvoices(invoices []domain.Invoice, balances map[uuid.UUID]float64) error {
	for i := range invoices {
		row := invoiceToRow(&invoices[i], balances[invoices[i].ID])
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func invoiceToRow(inv *domain.Invoice, balance float64) []string {
	row := make([]string, len(invoiceColumns))
	row[0] = inv.InvoiceNumber
	row[1] = inv.Subject
	row[2] = string(inv.Status)
	row[3] = formatBool(inv.IsCreditNote)
	row[4] = inv.IssueDate.Format("2006-01-02")
	row[5] = inv.DueTerm
	row[6] = inv.DueDate.Format("2006-01-02")
	row[7] = formatMoney(inv.SubtotalBeforeDiscount)
	row[8] = formatMoney(inv.DiscountAmount + inv.LineDiscountTotal)
	row[9] = formatMoney(inv.TaxAmount)
	row[10] = formatMoney(inv.Total)
	row[11] = formatMoney(balance)
	row[12] = formatTime(inv.SentAt)
	row[13] = formatTime(inv.PaidAt)
	row[14] = inv.CreatedAt.Format(time.RFC3339)
	return row
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a tenant name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header. Format: {sanitized_name}_invoices_{YYYY-MM-DD}.{ext}
func BuildFilename(tenantName, ext string) string {
	sanitized := SanitizeFilename(tenantName)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_invoices_%s.%s", sanitized, date, ext)
}
