package handler

import (
	"bytes"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldos/internal/export"
	"fieldos/internal/service"
)

// ReportHandler handles invoice ledger exports.
type ReportHandler struct {
	invoiceService service.InvoiceService
	tenantService  service.TenantService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(invoiceService service.InvoiceService, tenantService service.TenantService) *ReportHandler {
	return &ReportHandler{invoiceService: invoiceService, tenantService: tenantService}
}

// ExportInvoicesCSV handles GET /api/v1/reports/invoices.csv
func (h *ReportHandler) ExportInvoicesCSV(c *gin.Context) {
	tenantID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	tenant, err := h.tenantService.GetByID(c.Request.Context(), tenantID)
	if err != nil {
		HandleError(c, err)
		return
	}

	invoices, balances, err := h.invoiceService.ExportLedger(c.Request.Context(), tenantID)
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	buf.Write(export.BOM)
	w := export.NewWriter(&buf)
	if err := w.WriteHeader(); err != nil {
		HandleError(c, err)
		return
	}
	if err := w.WriteInvoices(invoices, balances); err != nil {
		HandleError(c, err)
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename(tenant.Name, "csv")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportInvoicesXLSX handles GET /api/v1/reports/invoices.xlsx
func (h *ReportHandler) ExportInvoicesXLSX(c *gin.Context) {
	tenantID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	tenant, err := h.tenantService.GetByID(c.Request.Context(), tenantID)
	if err != nil {
		HandleError(c, err)
		return
	}

	invoices, balances, err := h.invoiceService.ExportLedger(c.Request.Context(), tenantID)
	if err != nil {
		HandleError(c, err)
		return
	}

	f, err := export.BuildInvoiceWorkbook(invoices, balances)
	if err != nil {
		HandleError(c, err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("reportHandler: closing workbook: %v", err)
		}
	}()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename(tenant.Name, "xlsx")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
