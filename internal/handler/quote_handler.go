package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fieldos/internal/service"
)

// QuoteHandler handles quote lifecycle endpoints.
type QuoteHandler struct {
	quoteService service.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(quoteService service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// Create handles POST /api/v1/quotes
func (h *QuoteHandler) Create(c *gin.Context) {
	tenantID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var input service.CreateQuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	quote, err := h.quoteService.Create(c.Request.Context(), tenantID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, quote)
}

// List handles GET /api/v1/quotes
func (h *QuoteHandler) List(c *gin.Context) {
	tenantID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	quotes, total, err := h.quoteService.List(c.Request.Context(), tenantID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, quotes, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/quotes/:id
func (h *QuoteHandler) GetByID(c *gin.Context) {
	tenantID, quoteID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	quote, err := h.quoteService.GetByID(c.Request.Context(), tenantID, quoteID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, quote)
}

// Update handles PUT /api/v1/quotes/:id
func (h *QuoteHandler) Update(c *gin.Context) {
	tenantID, quoteID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	var input service.UpdateQuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	quote, err := h.quoteService.Update(c.Request.Context(), tenantID, quoteID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, quote)
}

// Send handles POST /api/v1/quotes/:id/send
func (h *QuoteHandler) Send(c *gin.Context) {
	tenantID, quoteID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	quote, err := h.quoteService.Send(c.Request.Context(), tenantID, quoteID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, quote)
}

// Approve handles POST /api/v1/quotes/:id/approve
func (h *QuoteHandler) Approve(c *gin.Context) {
	tenantID, quoteID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	var input service.RespondInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	quote, err := h.quoteService.Approve(c.Request.Context(), tenantID, quoteID, input.Name)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, quote)
}

// Decline handles POST /api/v1/quotes/:id/decline
func (h *QuoteHandler) Decline(c *gin.Context) {
	tenantID, quoteID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	var input service.RespondInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	quote, err := h.quoteService.Decline(c.Request.Context(), tenantID, quoteID, input.Name)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, quote)
}

// Archive handles POST /api/v1/quotes/:id/archive
func (h *QuoteHandler) Archive(c *gin.Context) {
	tenantID, quoteID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	quote, err := h.quoteService.Archive(c.Request.Context(), tenantID, quoteID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, quote)
}

// Revert handles POST /api/v1/quotes/:id/revert
func (h *QuoteHandler) Revert(c *gin.Context) {
	tenantID, quoteID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	quote, err := h.quoteService.Revert(c.Request.Context(), tenantID, quoteID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, quote)
}

// Convert handles POST /api/v1/quotes/:id/convert
func (h *QuoteHandler) Convert(c *gin.Context) {
	tenantID, quoteID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	job, err := h.quoteService.Convert(c.Request.Context(), tenantID, quoteID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, job)
}

// CreateSimilar handles POST /api/v1/quotes/:id/similar
func (h *QuoteHandler) CreateSimilar(c *gin.Context) {
	tenantID, quoteID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	quote, err := h.quoteService.CreateSimilar(c.Request.Context(), tenantID, quoteID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, quote)
}

func (h *QuoteHandler) pathIDs(c *gin.Context) (tenantID, quoteID uuid.UUID, ok bool) {
	tenantID, _, _, ok = extractAuthContext(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid quote ID")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, quoteID, true
}
