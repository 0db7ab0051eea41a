package export

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"fieldos/internal/domain"
)

const ledgerSheet = "Invoices"

// BuildInvoiceWorkbook renders the invoice ledger as an XLSX workbook with
// a styled header, one row per invoice, and a totals row at the bottom.
// The caller is responsible for closing the returned file.
func BuildInvoiceWorkbook(invoices []domain.Invoice, balances map[uuid.UUID]float64) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", ledgerSheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("export: header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return nil, fmt.Errorf("export: money style: %w", err)
	}

	for i, col := range invoiceColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(ledgerSheet, cell, col); err != nil {
			return nil, fmt.Errorf("export: header cell: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(invoiceColumns), 1)
	if err := f.SetCellStyle(ledgerSheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("export: header row style: %w", err)
	}

	var totalBilled, totalOutstanding float64
	for i := range invoices {
		inv := &invoices[i]
		balance := balances[inv.ID]
		rowNum := i + 2

		values := []interface{}{
			inv.InvoiceNumber,
			inv.Subject,
			string(inv.Status),
			formatBool(inv.IsCreditNote),
			inv.IssueDate.Format("2006-01-02"),
			inv.DueTerm,
			inv.DueDate.Format("2006-01-02"),
			inv.SubtotalBeforeDiscount,
			inv.DiscountAmount + inv.LineDiscountTotal,
			inv.TaxAmount,
			inv.Total,
			balance,
			formatTime(inv.SentAt),
			formatTime(inv.PaidAt),
			inv.CreatedAt.Format("2006-01-02"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
			if err := f.SetCellValue(ledgerSheet, cell, v); err != nil {
				return nil, fmt.Errorf("export: row %d: %w", rowNum, err)
			}
		}

		// Money columns H through L.
		start, _ := excelize.CoordinatesToCellName(8, rowNum)
		end, _ := excelize.CoordinatesToCellName(12, rowNum)
		if err := f.SetCellStyle(ledgerSheet, start, end, moneyStyle); err != nil {
			return nil, fmt.Errorf("export: row style %d: %w", rowNum, err)
		}

		if !inv.IsCreditNote {
			totalBilled += inv.Total
			totalOutstanding += balance
		}
	}

	totalsRow := len(invoices) + 3
	labelCell, _ := excelize.CoordinatesToCellName(7, totalsRow)
	billedCell, _ := excelize.CoordinatesToCellName(11, totalsRow)
	outstandingCell, _ := excelize.CoordinatesToCellName(12, totalsRow)
	_ = f.SetCellValue(ledgerSheet, labelCell, "Totals")
	_ = f.SetCellValue(ledgerSheet, billedCell, totalBilled)
	_ = f.SetCellValue(ledgerSheet, outstandingCell, totalOutstanding)
	_ = f.SetCellStyle(ledgerSheet, billedCell, outstandingCell, moneyStyle)

	_ = f.SetColWidth(ledgerSheet, "A", "B", 22)
	_ = f.SetColWidth(ledgerSheet, "C", "G", 14)
	_ = f.SetColWidth(ledgerSheet, "H", "L", 12)
	_ = f.SetColWidth(ledgerSheet, "M", "O", 20)

	return f, nil
}
