package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fieldos/internal/domain"
	"fieldos/internal/service"
)

// JobHandler handles job lifecycle and attachment endpoints.
type JobHandler struct {
	jobService        service.JobService
	attachmentService service.AttachmentService
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(jobService service.JobService, attachmentService service.AttachmentService) *JobHandler {
	return &JobHandler{jobService: jobService, attachmentService: attachmentService}
}

// Create handles POST /api/v1/jobs
func (h *JobHandler) Create(c *gin.Context) {
	tenantID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var input service.CreateJobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	job, err := h.jobService.Create(c.Request.Context(), tenantID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, job)
}

// List handles GET /api/v1/jobs
func (h *JobHandler) List(c *gin.Context) {
	tenantID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	jobs, total, err := h.jobService.List(c.Request.Context(), tenantID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, jobs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/jobs/:id
func (h *JobHandler) GetByID(c *gin.Context) {
	tenantID, jobID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	job, err := h.jobService.GetByID(c.Request.Context(), tenantID, jobID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, job)
}

// Update handles PUT /api/v1/jobs/:id
func (h *JobHandler) Update(c *gin.Context) {
	tenantID, jobID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	var input service.UpdateJobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	job, err := h.jobService.Update(c.Request.Context(), tenantID, jobID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, job)
}

// UpdateStatus handles POST /api/v1/jobs/:id/status
func (h *JobHandler) UpdateStatus(c *gin.Context) {
	tenantID, jobID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	var body struct {
		Status domain.JobStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	job, err := h.jobService.UpdateStatus(c.Request.Context(), tenantID, jobID, body.Status)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, job)
}

// AddVisit handles POST /api/v1/jobs/:id/visits
func (h *JobHandler) AddVisit(c *gin.Context) {
	tenantID, jobID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	var input service.VisitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	job, err := h.jobService.AddVisit(c.Request.Context(), tenantID, jobID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, job)
}

// CompleteVisit handles POST /api/v1/jobs/:id/visits/:visitId/complete
func (h *JobHandler) CompleteVisit(c *gin.Context) {
	tenantID, jobID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	visitID, err := uuid.Parse(c.Param("visitId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid visit ID")
		return
	}

	job, err := h.jobService.CompleteVisit(c.Request.Context(), tenantID, jobID, visitID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, job)
}

// UploadAttachment handles POST /api/v1/jobs/:id/attachments
func (h *JobHandler) UploadAttachment(c *gin.Context) {
	tenantID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid job ID")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file form field is required")
		return
	}
	defer file.Close()

	attachment, err := h.attachmentService.Upload(c.Request.Context(), service.AttachmentUploadInput{
		TenantID:   tenantID,
		JobID:      jobID,
		UploadedBy: userID,
		File:       file,
		Header:     header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, attachment)
}

// ListAttachments handles GET /api/v1/jobs/:id/attachments
func (h *JobHandler) ListAttachments(c *gin.Context) {
	tenantID, jobID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	attachments, err := h.attachmentService.ListByJob(c.Request.Context(), tenantID, jobID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, attachments)
}

// GetAttachmentURL handles GET /api/v1/jobs/:id/attachments/:attachmentId/url
func (h *JobHandler) GetAttachmentURL(c *gin.Context) {
	tenantID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	attachmentID, err := uuid.Parse(c.Param("attachmentId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid attachment ID")
		return
	}

	url, err := h.attachmentService.GetDownloadURL(c.Request.Context(), tenantID, attachmentID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"url": url})
}

// DeleteAttachment handles DELETE /api/v1/jobs/:id/attachments/:attachmentId
func (h *JobHandler) DeleteAttachment(c *gin.Context) {
	tenantID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	attachmentID, err := uuid.Parse(c.Param("attachmentId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid attachment ID")
		return
	}

	if err := h.attachmentService.Delete(c.Request.Context(), tenantID, attachmentID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "attachment deleted"})
}

func (h *JobHandler) pathIDs(c *gin.Context) (tenantID, jobID uuid.UUID, ok bool) {
	tenantID, _, _, ok = extractAuthContext(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid job ID")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, jobID, true
}
