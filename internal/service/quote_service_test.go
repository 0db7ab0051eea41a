package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"fieldos/internal/domain"
	"fieldos/internal/service"
	"fieldos/mocks"
)

func setupQuoteService() (
	service.QuoteService,
	*mocks.MockQuoteRepo,
	*mocks.MockClientRepo,
	*mocks.MockJobService,
) {
	quoteRepo := new(mocks.MockQuoteRepo)
	clientRepo := new(mocks.MockClientRepo)
	jobSvc := new(mocks.MockJobService)
	emailSender := new(mocks.MockEmailSender)
	events := new(mocks.MockEventPublisher)
	events.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	emailSender.On("SendQuoteApprovalEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	svc := service.NewQuoteService(quoteRepo, clientRepo, jobSvc, emailSender, events)
	return svc, quoteRepo, clientRepo, jobSvc
}

func quoteInStatus(status domain.QuoteStatus) *domain.Quote {
	return &domain.Quote{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		ClientID: uuid.New(),
		Title:    "Gutter cleaning",
		Status:   status,
		LineItems: domain.LineItems{
			{Kind: domain.LineItemPriced, Name: "Labour", Quantity: 2, UnitPrice: 50},
		},
		DiscountType: domain.DiscountAmount,
	}
}

// --- Create ---

func TestQuoteService_Create_Success(t *testing.T) {
	svc, quoteRepo, clientRepo, _ := setupQuoteService()

	tenantID := uuid.New()
	clientID := uuid.New()

	clientRepo.On("GetByID", mock.Anything, tenantID, clientID).
		Return(&domain.Client{ID: clientID, TenantID: tenantID, Name: "Acme"}, nil)
	quoteRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Quote")).Return(nil)

	quote, err := svc.Create(context.Background(), tenantID, service.CreateQuoteInput{
		ClientID: clientID,
		Title:    "Spring maintenance",
		LineItems: []domain.LineItem{
			{Name: "Labour", Quantity: 2, UnitPrice: 50},
		},
		TaxRate: 10,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusDraft, quote.Status)
	assert.Equal(t, domain.DiscountAmount, quote.DiscountType)
	assert.Equal(t, 100.0, quote.SubtotalBeforeDiscount)
	assert.Equal(t, 110.0, quote.Total)
	quoteRepo.AssertExpectations(t)
}

func TestQuoteService_Create_ClientNotFound(t *testing.T) {
	svc, _, clientRepo, _ := setupQuoteService()

	clientRepo.On("GetByID", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrNotFound)

	quote, err := svc.Create(context.Background(), uuid.New(), service.CreateQuoteInput{
		ClientID: uuid.New(),
	})

	assert.Nil(t, quote)
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
}

// --- Send ---

func TestQuoteService_Send_FromDraft(t *testing.T) {
	svc, quoteRepo, clientRepo, _ := setupQuoteService()

	quote := quoteInStatus(domain.QuoteStatusDraft)
	quoteRepo.On("GetByID", mock.Anything, quote.TenantID, quote.ID).Return(quote, nil)
	quoteRepo.On("Update", mock.Anything, quote).Return(nil)
	clientRepo.On("GetByID", mock.Anything, quote.TenantID, quote.ClientID).
		Return(&domain.Client{ID: quote.ClientID, Name: "Acme"}, nil).Maybe()

	sent, err := svc.Send(context.Background(), quote.TenantID, quote.ID)

	assert.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusAwaitingResponse, sent.Status)
	assert.NotNil(t, sent.SentAt)
	assert.NotEmpty(t, sent.ApprovalToken)
	quoteRepo.AssertExpectations(t)
}

func TestQuoteService_Send_ResendKeepsOriginalSentAt(t *testing.T) {
	svc, quoteRepo, clientRepo, _ := setupQuoteService()

	firstSend := time.Now().UTC().Add(-48 * time.Hour)
	quote := quoteInStatus(domain.QuoteStatusChangesRequested)
	quote.SentAt = &firstSend
	quote.ApprovalToken = "existing-token"

	quoteRepo.On("GetByID", mock.Anything, quote.TenantID, quote.ID).Return(quote, nil)
	quoteRepo.On("Update", mock.Anything, quote).Return(nil)
	clientRepo.On("GetByID", mock.Anything, quote.TenantID, quote.ClientID).
		Return(&domain.Client{ID: quote.ClientID, Name: "Acme"}, nil).Maybe()

	sent, err := svc.Send(context.Background(), quote.TenantID, quote.ID)

	assert.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusAwaitingResponse, sent.Status)
	assert.Equal(t, firstSend, *sent.SentAt)
	assert.Equal(t, "existing-token", sent.ApprovalToken)
}

func TestQuoteService_Send_FromApproved(t *testing.T) {
	svc, quoteRepo, _, _ := setupQuoteService()

	quote := quoteInStatus(domain.QuoteStatusApproved)
	quoteRepo.On("GetByID", mock.Anything, quote.TenantID, quote.ID).Return(quote, nil)

	sent, err := svc.Send(context.Background(), quote.TenantID, quote.ID)

	assert.Nil(t, sent)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	quoteRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// --- Approve / Decline ---

func TestQuoteService_Approve_FromAwaitingResponse(t *testing.T) {
	svc, quoteRepo, _, _ := setupQuoteService()

	quote := quoteInStatus(domain.QuoteStatusAwaitingResponse)
	quoteRepo.On("GetByID", mock.Anything, quote.TenantID, quote.ID).Return(quote, nil)
	quoteRepo.On("Update", mock.Anything, quote).Return(nil)

	approved, err := svc.Approve(context.Background(), quote.TenantID, quote.ID, "Jane Doe")

	assert.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusApproved, approved.Status)
	assert.Equal(t, "Jane Doe", approved.ApprovedByName)
	assert.NotNil(t, approved.ApprovedAt)
}

func TestQuoteService_Approve_FromConverted(t *testing.T) {
	svc, quoteRepo, _, _ := setupQuoteService()

	quote := quoteInStatus(domain.QuoteStatusConverted)
	quoteRepo.On("GetByID", mock.Anything, quote.TenantID, quote.ID).Return(quote, nil)

	approved, err := svc.Approve(context.Background(), quote.TenantID, quote.ID, "Jane Doe")

	assert.Nil(t, approved)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestQuoteService_Decline_MovesToChangesRequested(t *testing.T) {
	svc, quoteRepo, _, _ := setupQuoteService()

	quote := quoteInStatus(domain.QuoteStatusAwaitingResponse)
	quoteRepo.On("GetByID", mock.Anything, quote.TenantID, quote.ID).Return(quote, nil)
	quoteRepo.On("Update", mock.Anything, quote).Return(nil)

	declined, err := svc.Decline(context.Background(), quote.TenantID, quote.ID, "Jane Doe")

	assert.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusChangesRequested, declined.Status)
	assert.Equal(t, "Jane Doe", declined.DeclinedByName)
	assert.NotNil(t, declined.DeclinedAt)
}

func TestQuoteService_ApproveByToken(t *testing.T) {
	svc, quoteRepo, _, _ := setupQuoteService()

	quote := quoteInStatus(domain.QuoteStatusAwaitingResponse)
	quote.ApprovalToken = "tok-123"
	quoteRepo.On("GetByApprovalToken", mock.Anything, "tok-123").Return(quote, nil)
	quoteRepo.On("Update", mock.Anything, quote).Return(nil)

	approved, err := svc.ApproveByToken(context.Background(), "tok-123", "Jane Doe")

	assert.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusApproved, approved.Status)
}

// --- Archive ---

func TestQuoteService_Archive_FromAwaitingResponse(t *testing.T) {
	svc, quoteRepo, _, _ := setupQuoteService()

	quote := quoteInStatus(domain.QuoteStatusAwaitingResponse)
	quoteRepo.On("GetByID", mock.Anything, quote.TenantID, quote.ID).Return(quote, nil)
	quoteRepo.On("Update", mock.Anything, quote).Return(nil)

	archived, err := svc.Archive(context.Background(), quote.TenantID, quote.ID)

	assert.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusArchived, archived.Status)
	assert.NotNil(t, archived.ArchivedAt)
}

func TestQuoteService_Archive_FromDraft(t *testing.T) {
	svc, quoteRepo, _, _ := setupQuoteService()

	quote := quoteInStatus(domain.QuoteStatusDraft)
	quoteRepo.On("GetByID", mock.Anything, quote.TenantID, quote.ID).Return(quote, nil)

	archived, err := svc.Archive(context.Background(), quote.TenantID, quote.ID)

	assert.Nil(t, archived)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	quoteRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestQuoteService_Archive_FromApproved(t *testing.T) {
	svc, quoteRepo, _, _ := setupQuoteService()

	quote := quoteInStatus(domain.QuoteStatusApproved)
	quoteRepo.On("GetByID", mock.Anything, quote.TenantID, quote.ID).Return(quote, nil)

	_, err := svc.Archive(context.Background(), quote.TenantID, quote.ID)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// --- Revert ---

func TestQuoteService_Revert_ClearsResponse(t *testing.T) {
	svc, quoteRepo, _, _ := setupQuoteService()

	now := time.Now().UTC()
	quote := quoteInStatus(domain.QuoteStatusApproved)
	quote.ApprovedAt = &now
	quote.ApprovedByName = "Jane Doe"

	quoteRepo.On("GetByID", mock.Anything, quote.TenantID, quote.ID).Return(quote, nil)
	quoteRepo.On("Update", mock.Anything, quote).Return(nil)

	reverted, err := svc.Revert(context.Background(), quote.TenantID, quote.ID)

	assert.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusDraft, reverted.Status)
	assert.Nil(t, reverted.ApprovedAt)
	assert.Empty(t, reverted.ApprovedByName)
}

func TestQuoteService_Revert_FromConverted(t *testing.T) {
	svc, quoteRepo, _, _ := setupQuoteService()

	quote := quoteInStatus(domain.QuoteStatusConverted)
	quoteRepo.On("GetByID", mock.Anything, quote.TenantID, quote.ID).Return(quote, nil)

	_, err := svc.Revert(context.Background(), quote.TenantID, quote.ID)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// --- Convert ---

func TestQuoteService_Convert_CreatesJobThenMarksConverted(t *testing.T) {
	svc, quoteRepo, clientRepo, jobSvc := setupQuoteService()

	quote := quoteInStatus(domain.QuoteStatusApproved)
	job := &domain.Job{ID: uuid.New(), TenantID: quote.TenantID, QuoteID: &quote.ID}

	quoteRepo.On("GetByID", mock.Anything, quote.TenantID, quote.ID).Return(quote, nil)
	clientRepo.On("GetByID", mock.Anything, quote.TenantID, quote.ClientID).
		Return(&domain.Client{ID: quote.ClientID, Name: "Acme"}, nil)
	jobSvc.On("CreateFromQuote", mock.Anything, quote, "Acme").Return(job, nil)
	quoteRepo.On("Update", mock.Anything, quote).Return(nil)

	created, err := svc.Convert(context.Background(), quote.TenantID, quote.ID)

	assert.NoError(t, err)
	assert.Equal(t, job.ID, created.ID)
	assert.Equal(t, domain.QuoteStatusConverted, quote.Status)
	assert.NotNil(t, quote.ConvertedAt)
	jobSvc.AssertExpectations(t)
	quoteRepo.AssertExpectations(t)
}

func TestQuoteService_Convert_RequiresApproved(t *testing.T) {
	svc, quoteRepo, _, jobSvc := setupQuoteService()

	quote := quoteInStatus(domain.QuoteStatusAwaitingResponse)
	quoteRepo.On("GetByID", mock.Anything, quote.TenantID, quote.ID).Return(quote, nil)

	job, err := svc.Convert(context.Background(), quote.TenantID, quote.ID)

	assert.Nil(t, job)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	jobSvc.AssertNotCalled(t, "CreateFromQuote", mock.Anything, mock.Anything, mock.Anything)
}

// --- CreateSimilar ---

func TestQuoteService_CreateSimilar_StripsHistory(t *testing.T) {
	svc, quoteRepo, _, _ := setupQuoteService()

	now := time.Now().UTC()
	source := quoteInStatus(domain.QuoteStatusConverted)
	source.QuoteNumber = "QU-0042"
	source.ApprovalToken = "tok-123"
	source.SentAt = &now
	source.ApprovedAt = &now
	source.ApprovedByName = "Jane Doe"
	source.ConvertedAt = &now

	quoteRepo.On("GetByID", mock.Anything, source.TenantID, source.ID).Return(source, nil)
	quoteRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Quote")).Return(nil)

	dup, err := svc.CreateSimilar(context.Background(), source.TenantID, source.ID)

	assert.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusDraft, dup.Status)
	assert.Empty(t, dup.QuoteNumber)
	assert.Empty(t, dup.ApprovalToken)
	assert.Nil(t, dup.SentAt)
	assert.Nil(t, dup.ApprovedAt)
	assert.Empty(t, dup.ApprovedByName)
	assert.Equal(t, source.LineItems, dup.LineItems)
	assert.Equal(t, source.Title, dup.Title)
}
