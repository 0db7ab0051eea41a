package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fieldos/internal/service"
)

// InvoiceHandler handles invoice lifecycle endpoints.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// Create handles POST /api/v1/invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	tenantID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var input service.CreateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	invoice, err := h.invoiceService.CreateDraft(c.Request.Context(), tenantID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, invoice)
}

// CreateFromJob handles POST /api/v1/jobs/:id/invoice
func (h *InvoiceHandler) CreateFromJob(c *gin.Context) {
	tenantID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid job ID")
		return
	}

	invoice, err := h.invoiceService.CreateFromJob(c.Request.Context(), tenantID, jobID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, invoice)
}

// List handles GET /api/v1/invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	tenantID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	invoices, total, err := h.invoiceService.List(c.Request.Context(), tenantID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, invoices, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/invoices/:id
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	tenantID, invoiceID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	detail, err := h.invoiceService.GetByID(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, detail)
}

// Update handles PUT /api/v1/invoices/:id
func (h *InvoiceHandler) Update(c *gin.Context) {
	tenantID, invoiceID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	var input service.UpdateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	invoice, err := h.invoiceService.Update(c.Request.Context(), tenantID, invoiceID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, invoice)
}

// Send handles POST /api/v1/invoices/:id/send
func (h *InvoiceHandler) Send(c *gin.Context) {
	tenantID, invoiceID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Send(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, invoice)
}

// RecordPayment handles POST /api/v1/invoices/:id/payments
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	tenantID, invoiceID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	var input service.RecordPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	detail, err := h.invoiceService.RecordPayment(c.Request.Context(), tenantID, invoiceID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, detail)
}

// IssueCreditNote handles POST /api/v1/invoices/:id/credit-notes
func (h *InvoiceHandler) IssueCreditNote(c *gin.Context) {
	tenantID, invoiceID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	var input service.IssueCreditNoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	note, err := h.invoiceService.IssueCreditNote(c.Request.Context(), tenantID, invoiceID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, note)
}

// GetBalance handles GET /api/v1/invoices/:id/balance
func (h *InvoiceHandler) GetBalance(c *gin.Context) {
	tenantID, invoiceID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	balance, err := h.invoiceService.Balance(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"balance": balance})
}

func (h *InvoiceHandler) pathIDs(c *gin.Context) (tenantID, invoiceID uuid.UUID, ok bool) {
	tenantID, _, _, ok = extractAuthContext(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, invoiceID, true
}
