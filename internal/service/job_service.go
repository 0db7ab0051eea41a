package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"fieldos/internal/domain"
	"fieldos/internal/port"
)

// VisitInput is the DTO for scheduling a visit on a job.
type VisitInput struct {
	StartAt   time.Time   `json:"start_at" binding:"required"`
	EndAt     time.Time   `json:"end_at" binding:"required"`
	Assignees []uuid.UUID `json:"assignees"`
}

// CreateJobInput is the DTO for creating a job directly.
type CreateJobInput struct {
	ClientID     uuid.UUID         `json:"client_id" binding:"required"`
	PropertyID   *uuid.UUID        `json:"property_id"`
	Title        string            `json:"title"`
	Instructions string            `json:"instructions"`
	LineItems    []domain.LineItem `json:"line_items"`
	Assignees    []uuid.UUID       `json:"assignees"`
	Schedule     *VisitInput       `json:"schedule"`
}

// UpdateJobInput is the DTO for editing a job.
type UpdateJobInput struct {
	Title        *string            `json:"title"`
	Instructions *string            `json:"instructions"`
	LineItems    *[]domain.LineItem `json:"line_items"`
	Assignees    *[]uuid.UUID       `json:"assignees"`
}

// JobService defines the job lifecycle contract.
type JobService interface {
	Create(ctx context.Context, tenantID uuid.UUID, input CreateJobInput) (*domain.Job, error)
	// CreateFromQuote materializes the job side of a quote conversion. The
	// caller owns the quote's own transition.
	CreateFromQuote(ctx context.Context, quote *domain.Quote, clientName string) (*domain.Job, error)
	GetByID(ctx context.Context, tenantID, jobID uuid.UUID) (*domain.Job, error)
	List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.Job, int, error)
	Update(ctx context.Context, tenantID, jobID uuid.UUID, input UpdateJobInput) (*domain.Job, error)
	UpdateStatus(ctx context.Context, tenantID, jobID uuid.UUID, status domain.JobStatus) (*domain.Job, error)
	AddVisit(ctx context.Context, tenantID, jobID uuid.UUID, input VisitInput) (*domain.Job, error)
	CompleteVisit(ctx context.Context, tenantID, jobID, visitID uuid.UUID) (*domain.Job, error)
}

type jobService struct {
	jobRepo    port.JobRepository
	clientRepo port.ClientRepository
	invoiceSvc InvoiceService
	events     port.EventPublisher
}

// NewJobService creates a new JobService implementation.
func NewJobService(
	jobRepo port.JobRepository,
	clientRepo port.ClientRepository,
	invoiceSvc InvoiceService,
	events port.EventPublisher,
) JobService {
	return &jobService{
		jobRepo:    jobRepo,
		clientRepo: clientRepo,
		invoiceSvc: invoiceSvc,
		events:     events,
	}
}

func (s *jobService) Create(ctx context.Context, tenantID uuid.UUID, input CreateJobInput) (*domain.Job, error) {
	client, err := s.clientRepo.GetByID(ctx, tenantID, input.ClientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrClientNotFound
		}
		return nil, err
	}

	var snapshot domain.PropertySnapshot
	if input.PropertyID != nil {
		property, err := s.clientRepo.GetProperty(ctx, tenantID, *input.PropertyID)
		if err != nil {
			return nil, err
		}
		snapshot = property.Snapshot()
	}

	title := input.Title
	if title == "" {
		title = fallbackJobTitle(input.LineItems, client.Name)
	}

	job := &domain.Job{
		TenantID:         tenantID,
		ClientID:         input.ClientID,
		PropertyID:       input.PropertyID,
		PropertySnapshot: snapshot,
		Title:            title,
		Instructions:     input.Instructions,
		Status:           domain.JobStatusUnscheduled,
		LineItems:        normalizeLineItems(input.LineItems),
		Assignees:        domain.UUIDList(input.Assignees),
	}

	if input.Schedule != nil {
		visit, err := buildVisit(*input.Schedule)
		if err != nil {
			return nil, err
		}
		job.Visits = domain.Visits{visit}
		job.Status = domain.JobStatusScheduled
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *jobService) CreateFromQuote(ctx context.Context, quote *domain.Quote, clientName string) (*domain.Job, error) {
	var snapshot domain.PropertySnapshot
	if quote.PropertyID != nil {
		property, err := s.clientRepo.GetProperty(ctx, quote.TenantID, *quote.PropertyID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if property != nil {
			snapshot = property.Snapshot()
		}
	}

	title := quote.Title
	if title == "" {
		title = fallbackJobTitle(quote.LineItems, clientName)
	}

	job := &domain.Job{
		TenantID:         quote.TenantID,
		ClientID:         quote.ClientID,
		QuoteID:          &quote.ID,
		PropertyID:       quote.PropertyID,
		PropertySnapshot: snapshot,
		Title:            title,
		Status:           domain.JobStatusUnscheduled,
		LineItems:        quote.LineItems,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *jobService) GetByID(ctx context.Context, tenantID, jobID uuid.UUID) (*domain.Job, error) {
	return s.jobRepo.GetByID(ctx, tenantID, jobID)
}

func (s *jobService) List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.Job, int, error) {
	return s.jobRepo.ListByTenant(ctx, tenantID, offset, limit)
}

func (s *jobService) Update(ctx context.Context, tenantID, jobID uuid.UUID, input UpdateJobInput) (*domain.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status == domain.JobStatusCompleted {
		return nil, fmt.Errorf("%w: completed jobs cannot be edited", domain.ErrInvalidTransition)
	}

	if input.Title != nil {
		job.Title = *input.Title
	}
	if input.Instructions != nil {
		job.Instructions = *input.Instructions
	}
	if input.LineItems != nil {
		job.LineItems = normalizeLineItems(*input.LineItems)
	}
	if input.Assignees != nil {
		job.Assignees = domain.UUIDList(*input.Assignees)
	}

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// UpdateStatus moves the job through its lifecycle. Completing a job
// creates its invoice as a side effect; repeating the completion leaves
// the job untouched but re-attempts invoicing, which the existing-invoice
// guard keeps idempotent. Completed is terminal.
func (s *jobService) UpdateStatus(ctx context.Context, tenantID, jobID uuid.UUID, status domain.JobStatus) (*domain.Job, error) {
	if !domain.ValidJobStatuses[status] {
		return nil, fmt.Errorf("%w: unknown job status %q", domain.ErrValidation, status)
	}

	job, err := s.jobRepo.GetByID(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status == domain.JobStatusCompleted {
		if status == domain.JobStatusCompleted {
			// Re-running completion retries the invoicing side effect in
			// case the first attempt failed after the status was persisted.
			if err := s.invoiceJob(ctx, job); err != nil {
				return nil, err
			}
			return job, nil
		}
		return nil, fmt.Errorf("%w: job %s is already completed", domain.ErrInvalidTransition, job.JobNumber)
	}

	now := time.Now().UTC()
	job.Status = status
	switch status {
	case domain.JobStatusInProgress:
		if job.StartedAt == nil {
			job.StartedAt = &now
		}
	case domain.JobStatusCompleted:
		job.CompletedAt = &now
	}

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}

	if status == domain.JobStatusCompleted {
		s.publish(ctx, domain.EventJobCompleted, job.TenantID, job.ID)
		if err := s.invoiceJob(ctx, job); err != nil {
			return nil, err
		}
	}
	return job, nil
}

func (s *jobService) AddVisit(ctx context.Context, tenantID, jobID uuid.UUID, input VisitInput) (*domain.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status == domain.JobStatusCompleted {
		return nil, fmt.Errorf("%w: completed jobs cannot be scheduled", domain.ErrInvalidTransition)
	}

	visit, err := buildVisit(input)
	if err != nil {
		return nil, err
	}
	job.Visits = append(job.Visits, visit)

	// The first visit moves an unscheduled job onto the calendar.
	if job.Status == domain.JobStatusUnscheduled || job.Status == domain.JobStatusDraft {
		job.Status = domain.JobStatusScheduled
	}

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *jobService) CompleteVisit(ctx context.Context, tenantID, jobID, visitID uuid.UUID) (*domain.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	found := false
	for i := range job.Visits {
		if job.Visits[i].ID == visitID {
			if job.Visits[i].CompletedAt == nil {
				job.Visits[i].CompletedAt = &now
			}
			found = true
			break
		}
	}
	if !found {
		return nil, domain.ErrNotFound
	}

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// invoiceJob creates the completion invoice unless one already exists.
// The completed status is already persisted: if invoicing fails here, a
// retried completion finds no invoice and tries again.
func (s *jobService) invoiceJob(ctx context.Context, job *domain.Job) error {
	_, err := s.invoiceSvc.CreateFromJob(ctx, job.TenantID, job.ID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return nil
		}
		return fmt.Errorf("jobService: invoicing completed job %s: %w", job.JobNumber, err)
	}
	return nil
}

func (s *jobService) publish(ctx context.Context, eventType domain.EventType, tenantID, entityID uuid.UUID) {
	event := domain.Event{
		Type:       eventType,
		TenantID:   tenantID,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		log.Printf("jobService: publish %s: %v", eventType, err)
	}
}

func buildVisit(input VisitInput) (domain.Visit, error) {
	if !input.EndAt.After(input.StartAt) {
		return domain.Visit{}, fmt.Errorf("%w: visit end must be after start", domain.ErrValidation)
	}
	return domain.Visit{
		ID:        uuid.New(),
		StartAt:   input.StartAt,
		EndAt:     input.EndAt,
		Assignees: input.Assignees,
	}, nil
}

// fallbackJobTitle derives a title from the first line item's name, or
// from the client name when it has none.
func fallbackJobTitle(items []domain.LineItem, clientName string) string {
	if len(items) > 0 && items[0].Name != "" {
		return items[0].Name
	}
	return fmt.Sprintf("Job for %s", clientName)
}
