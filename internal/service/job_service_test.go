package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"fieldos/internal/domain"
	"fieldos/internal/service"
	"fieldos/mocks"
)

func setupJobService() (
	service.JobService,
	*mocks.MockJobRepo,
	*mocks.MockClientRepo,
	*mocks.MockInvoiceService,
) {
	jobRepo := new(mocks.MockJobRepo)
	clientRepo := new(mocks.MockClientRepo)
	invoiceSvc := new(mocks.MockInvoiceService)
	events := new(mocks.MockEventPublisher)
	events.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	svc := service.NewJobService(jobRepo, clientRepo, invoiceSvc, events)
	return svc, jobRepo, clientRepo, invoiceSvc
}

func jobInStatus(status domain.JobStatus) *domain.Job {
	return &domain.Job{
		ID:        uuid.New(),
		TenantID:  uuid.New(),
		ClientID:  uuid.New(),
		JobNumber: "JOB-0007",
		Title:     "Hedge trimming",
		Status:    status,
		LineItems: domain.LineItems{
			{Kind: domain.LineItemPriced, Name: "Labour", Quantity: 3, UnitPrice: 40},
		},
	}
}

// --- Create ---

func TestJobService_Create_WithSchedule(t *testing.T) {
	svc, jobRepo, clientRepo, _ := setupJobService()

	tenantID := uuid.New()
	clientID := uuid.New()
	clientRepo.On("GetByID", mock.Anything, tenantID, clientID).
		Return(&domain.Client{ID: clientID, Name: "Acme"}, nil)
	jobRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Job")).Return(nil)

	start := time.Now().UTC().Add(24 * time.Hour)
	job, err := svc.Create(context.Background(), tenantID, service.CreateJobInput{
		ClientID: clientID,
		Title:    "Lawn care",
		Schedule: &service.VisitInput{StartAt: start, EndAt: start.Add(2 * time.Hour)},
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.JobStatusScheduled, job.Status)
	assert.Len(t, job.Visits, 1)
}

func TestJobService_Create_TitleFallsBackToLineItem(t *testing.T) {
	svc, jobRepo, clientRepo, _ := setupJobService()

	tenantID := uuid.New()
	clientID := uuid.New()
	clientRepo.On("GetByID", mock.Anything, tenantID, clientID).
		Return(&domain.Client{ID: clientID, Name: "Acme"}, nil)
	jobRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Job")).Return(nil)

	job, err := svc.Create(context.Background(), tenantID, service.CreateJobInput{
		ClientID: clientID,
		LineItems: []domain.LineItem{
			{Name: "Window cleaning", Quantity: 1, UnitPrice: 80},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, "Window cleaning", job.Title)
	assert.Equal(t, domain.JobStatusUnscheduled, job.Status)
}

func TestJobService_Create_TitleFallsBackToClientName(t *testing.T) {
	svc, jobRepo, clientRepo, _ := setupJobService()

	tenantID := uuid.New()
	clientID := uuid.New()
	clientRepo.On("GetByID", mock.Anything, tenantID, clientID).
		Return(&domain.Client{ID: clientID, Name: "Acme"}, nil)
	jobRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Job")).Return(nil)

	// Only the first item's name counts as a title source.
	job, err := svc.Create(context.Background(), tenantID, service.CreateJobInput{
		ClientID: clientID,
		LineItems: []domain.LineItem{
			{Kind: domain.LineItemText, Description: "Access via side gate"},
			{Name: "Window cleaning", Quantity: 1, UnitPrice: 80},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, "Job for Acme", job.Title)
}

// --- UpdateStatus ---

func TestJobService_UpdateStatus_CompletionCreatesInvoice(t *testing.T) {
	svc, jobRepo, _, invoiceSvc := setupJobService()

	job := jobInStatus(domain.JobStatusInProgress)
	jobRepo.On("GetByID", mock.Anything, job.TenantID, job.ID).Return(job, nil)
	jobRepo.On("Update", mock.Anything, job).Return(nil)
	invoiceSvc.On("CreateFromJob", mock.Anything, job.TenantID, job.ID).
		Return(&domain.Invoice{ID: uuid.New(), JobID: &job.ID}, nil)

	completed, err := svc.UpdateStatus(context.Background(), job.TenantID, job.ID, domain.JobStatusCompleted)

	assert.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)
	invoiceSvc.AssertExpectations(t)
}

func TestJobService_UpdateStatus_RepeatCompletionCreatesNoSecondInvoice(t *testing.T) {
	svc, jobRepo, _, invoiceSvc := setupJobService()

	job := jobInStatus(domain.JobStatusCompleted)
	jobRepo.On("GetByID", mock.Anything, job.TenantID, job.ID).Return(job, nil)
	invoiceSvc.On("CreateFromJob", mock.Anything, job.TenantID, job.ID).
		Return(nil, fmt.Errorf("%w: job JOB-0007 is already invoiced", domain.ErrInvalidTransition))

	result, err := svc.UpdateStatus(context.Background(), job.TenantID, job.ID, domain.JobStatusCompleted)

	assert.NoError(t, err)
	assert.Equal(t, job, result)
	jobRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	invoiceSvc.AssertExpectations(t)
}

func TestJobService_UpdateStatus_RecompletionRetriesFailedInvoicing(t *testing.T) {
	svc, jobRepo, _, invoiceSvc := setupJobService()

	job := jobInStatus(domain.JobStatusInProgress)
	jobRepo.On("GetByID", mock.Anything, job.TenantID, job.ID).Return(job, nil)
	jobRepo.On("Update", mock.Anything, job).Return(nil)
	invoiceSvc.On("CreateFromJob", mock.Anything, job.TenantID, job.ID).
		Return(nil, errors.New("connection refused")).Once()
	invoiceSvc.On("CreateFromJob", mock.Anything, job.TenantID, job.ID).
		Return(&domain.Invoice{ID: uuid.New(), JobID: &job.ID}, nil).Once()

	// The first completion persists the status but fails to invoice.
	_, err := svc.UpdateStatus(context.Background(), job.TenantID, job.ID, domain.JobStatusCompleted)
	assert.Error(t, err)
	assert.Equal(t, domain.JobStatusCompleted, job.Status)

	// Completing again leaves the job alone and retries the invoice.
	result, err := svc.UpdateStatus(context.Background(), job.TenantID, job.ID, domain.JobStatusCompleted)
	assert.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, result.Status)
	invoiceSvc.AssertExpectations(t)
}

func TestJobService_UpdateStatus_CompletionSwallowsAlreadyInvoiced(t *testing.T) {
	svc, jobRepo, _, invoiceSvc := setupJobService()

	job := jobInStatus(domain.JobStatusScheduled)
	jobRepo.On("GetByID", mock.Anything, job.TenantID, job.ID).Return(job, nil)
	jobRepo.On("Update", mock.Anything, job).Return(nil)
	invoiceSvc.On("CreateFromJob", mock.Anything, job.TenantID, job.ID).
		Return(nil, fmt.Errorf("%w: job JOB-0007 is already invoiced", domain.ErrInvalidTransition))

	completed, err := svc.UpdateStatus(context.Background(), job.TenantID, job.ID, domain.JobStatusCompleted)

	assert.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, completed.Status)
}

func TestJobService_UpdateStatus_CompletedIsTerminal(t *testing.T) {
	svc, jobRepo, _, _ := setupJobService()

	job := jobInStatus(domain.JobStatusCompleted)
	jobRepo.On("GetByID", mock.Anything, job.TenantID, job.ID).Return(job, nil)

	result, err := svc.UpdateStatus(context.Background(), job.TenantID, job.ID, domain.JobStatusScheduled)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestJobService_UpdateStatus_UnknownStatus(t *testing.T) {
	svc, _, _, _ := setupJobService()

	result, err := svc.UpdateStatus(context.Background(), uuid.New(), uuid.New(), domain.JobStatus("cancelled"))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestJobService_UpdateStatus_InProgressStampsStartedAt(t *testing.T) {
	svc, jobRepo, _, _ := setupJobService()

	job := jobInStatus(domain.JobStatusScheduled)
	jobRepo.On("GetByID", mock.Anything, job.TenantID, job.ID).Return(job, nil)
	jobRepo.On("Update", mock.Anything, job).Return(nil)

	result, err := svc.UpdateStatus(context.Background(), job.TenantID, job.ID, domain.JobStatusInProgress)

	assert.NoError(t, err)
	assert.Equal(t, domain.JobStatusInProgress, result.Status)
	assert.NotNil(t, result.StartedAt)
}

// --- Visits ---

func TestJobService_AddVisit_SchedulesUnscheduledJob(t *testing.T) {
	svc, jobRepo, _, _ := setupJobService()

	job := jobInStatus(domain.JobStatusUnscheduled)
	jobRepo.On("GetByID", mock.Anything, job.TenantID, job.ID).Return(job, nil)
	jobRepo.On("Update", mock.Anything, job).Return(nil)

	start := time.Now().UTC().Add(24 * time.Hour)
	result, err := svc.AddVisit(context.Background(), job.TenantID, job.ID, service.VisitInput{
		StartAt: start,
		EndAt:   start.Add(time.Hour),
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.JobStatusScheduled, result.Status)
	assert.Len(t, result.Visits, 1)
}

func TestJobService_AddVisit_EndBeforeStart(t *testing.T) {
	svc, jobRepo, _, _ := setupJobService()

	job := jobInStatus(domain.JobStatusScheduled)
	jobRepo.On("GetByID", mock.Anything, job.TenantID, job.ID).Return(job, nil)

	start := time.Now().UTC()
	result, err := svc.AddVisit(context.Background(), job.TenantID, job.ID, service.VisitInput{
		StartAt: start,
		EndAt:   start.Add(-time.Hour),
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestJobService_AddVisit_CompletedJobRejected(t *testing.T) {
	svc, jobRepo, _, _ := setupJobService()

	job := jobInStatus(domain.JobStatusCompleted)
	jobRepo.On("GetByID", mock.Anything, job.TenantID, job.ID).Return(job, nil)

	start := time.Now().UTC()
	_, err := svc.AddVisit(context.Background(), job.TenantID, job.ID, service.VisitInput{
		StartAt: start,
		EndAt:   start.Add(time.Hour),
	})

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestJobService_CompleteVisit_UnknownVisit(t *testing.T) {
	svc, jobRepo, _, _ := setupJobService()

	job := jobInStatus(domain.JobStatusScheduled)
	jobRepo.On("GetByID", mock.Anything, job.TenantID, job.ID).Return(job, nil)

	result, err := svc.CompleteVisit(context.Background(), job.TenantID, job.ID, uuid.New())

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobService_CompleteVisit_StampsCompletedAt(t *testing.T) {
	svc, jobRepo, _, _ := setupJobService()

	visitID := uuid.New()
	job := jobInStatus(domain.JobStatusInProgress)
	job.Visits = domain.Visits{{ID: visitID, StartAt: time.Now().UTC(), EndAt: time.Now().UTC().Add(time.Hour)}}

	jobRepo.On("GetByID", mock.Anything, job.TenantID, job.ID).Return(job, nil)
	jobRepo.On("Update", mock.Anything, job).Return(nil)

	result, err := svc.CompleteVisit(context.Background(), job.TenantID, job.ID, visitID)

	assert.NoError(t, err)
	assert.NotNil(t, result.Visits[0].CompletedAt)
}

// --- CreateFromQuote ---

func TestJobService_CreateFromQuote_CarriesQuoteItems(t *testing.T) {
	svc, jobRepo, _, _ := setupJobService()

	quote := quoteInStatus(domain.QuoteStatusApproved)
	jobRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Job")).Return(nil)

	job, err := svc.CreateFromQuote(context.Background(), quote, "Acme")

	assert.NoError(t, err)
	assert.Equal(t, quote.TenantID, job.TenantID)
	assert.Equal(t, &quote.ID, job.QuoteID)
	assert.Equal(t, quote.LineItems, job.LineItems)
	assert.Equal(t, domain.JobStatusUnscheduled, job.Status)
}
