package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldos/internal/service"
)

// PortalHandler handles the unauthenticated client portal: quote review
// via the approval token and invoice viewing via the public token. The
// opaque tokens are the only credential.
type PortalHandler struct {
	quoteService   service.QuoteService
	invoiceService service.InvoiceService
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(quoteService service.QuoteService, invoiceService service.InvoiceService) *PortalHandler {
	return &PortalHandler{quoteService: quoteService, invoiceService: invoiceService}
}

// GetQuote handles GET /portal/quotes/:token
func (h *PortalHandler) GetQuote(c *gin.Context) {
	quote, err := h.quoteService.GetByApprovalToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, quote)
}

// ApproveQuote handles POST /portal/quotes/:token/approve
func (h *PortalHandler) ApproveQuote(c *gin.Context) {
	var input service.RespondInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	quote, err := h.quoteService.ApproveByToken(c.Request.Context(), c.Param("token"), input.Name)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, quote)
}

// DeclineQuote handles POST /portal/quotes/:token/decline
func (h *PortalHandler) DeclineQuote(c *gin.Context) {
	var input service.RespondInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	quote, err := h.quoteService.DeclineByToken(c.Request.Context(), c.Param("token"), input.Name)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, quote)
}

// GetInvoice handles GET /portal/invoices/:token
func (h *PortalHandler) GetInvoice(c *gin.Context) {
	detail, err := h.invoiceService.GetByPublicToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, detail)
}
