package service_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"fieldos/internal/config"
	"fieldos/internal/domain"
	"fieldos/internal/service"
	"fieldos/mocks"
)

func setupInvoiceService() (
	service.InvoiceService,
	*mocks.MockInvoiceRepo,
	*mocks.MockJobRepo,
	*mocks.MockQuoteRepo,
	*mocks.MockClientRepo,
) {
	invoiceRepo := new(mocks.MockInvoiceRepo)
	jobRepo := new(mocks.MockJobRepo)
	quoteRepo := new(mocks.MockQuoteRepo)
	clientRepo := new(mocks.MockClientRepo)
	emailSender := new(mocks.MockEmailSender)
	events := new(mocks.MockEventPublisher)
	events.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	emailSender.On("SendInvoiceEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	cfg := config.BillingConfig{
		DefaultPaymentTerm: "Net 30",
		DefaultTaxRate:     10,
	}
	svc := service.NewInvoiceService(invoiceRepo, jobRepo, quoteRepo, clientRepo, emailSender, events, cfg)
	return svc, invoiceRepo, jobRepo, quoteRepo, clientRepo
}

func invoiceInStatus(status domain.InvoiceStatus, total float64) *domain.Invoice {
	inv := &domain.Invoice{
		ID:            uuid.New(),
		TenantID:      uuid.New(),
		ClientID:      uuid.New(),
		InvoiceNumber: "INV-0011",
		Subject:       "Hedge trimming",
		Status:        status,
		IssueDate:     time.Now().UTC(),
		DueTerm:       "Net 30",
		DueDate:       time.Now().UTC().AddDate(0, 0, 30),
		DiscountType:  domain.DiscountAmount,
	}
	inv.Total = total
	return inv
}

// --- CreateFromJob ---

func TestInvoiceService_CreateFromJob_UsesTenantDefaults(t *testing.T) {
	svc, invoiceRepo, jobRepo, _, _ := setupInvoiceService()

	job := jobInStatus(domain.JobStatusCompleted)
	jobRepo.On("GetByID", mock.Anything, job.TenantID, job.ID).Return(job, nil)
	invoiceRepo.On("ExistsNonCreditForJob", mock.Anything, job.TenantID, job.ID).Return(false, nil)
	invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)

	invoice, err := svc.CreateFromJob(context.Background(), job.TenantID, job.ID)

	assert.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusDraft, invoice.Status)
	assert.Equal(t, &job.ID, invoice.JobID)
	assert.Equal(t, "Net 30", invoice.DueTerm)
	assert.True(t, invoice.DueDate.Equal(invoice.IssueDate.AddDate(0, 0, 30)))
	assert.Equal(t, 10.0, invoice.TaxRate)
	assert.InDelta(t, 132.0, invoice.Total, 1e-9)
	assert.NotEmpty(t, invoice.PublicToken)
	invoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_CreateFromJob_InheritsQuoteBilling(t *testing.T) {
	svc, invoiceRepo, jobRepo, quoteRepo, _ := setupInvoiceService()

	quote := quoteInStatus(domain.QuoteStatusConverted)
	quote.TaxRate = 20
	quote.DiscountType = domain.DiscountPercent
	quote.DiscountValue = 10

	job := jobInStatus(domain.JobStatusCompleted)
	job.TenantID = quote.TenantID
	job.QuoteID = &quote.ID

	jobRepo.On("GetByID", mock.Anything, job.TenantID, job.ID).Return(job, nil)
	invoiceRepo.On("ExistsNonCreditForJob", mock.Anything, job.TenantID, job.ID).Return(false, nil)
	quoteRepo.On("GetByID", mock.Anything, job.TenantID, quote.ID).Return(quote, nil)
	invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)

	invoice, err := svc.CreateFromJob(context.Background(), job.TenantID, job.ID)

	assert.NoError(t, err)
	assert.Equal(t, 20.0, invoice.TaxRate)
	assert.Equal(t, domain.DiscountPercent, invoice.DiscountType)
	assert.Equal(t, 10.0, invoice.DiscountValue)
}

func TestInvoiceService_CreateFromJob_RequiresCompletedJob(t *testing.T) {
	svc, invoiceRepo, jobRepo, _, _ := setupInvoiceService()

	for _, status := range []domain.JobStatus{
		domain.JobStatusUnscheduled,
		domain.JobStatusScheduled,
		domain.JobStatusInProgress,
	} {
		job := jobInStatus(status)
		jobRepo.On("GetByID", mock.Anything, job.TenantID, job.ID).Return(job, nil)

		invoice, err := svc.CreateFromJob(context.Background(), job.TenantID, job.ID)

		assert.Nil(t, invoice)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	}
	invoiceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInvoiceService_CreateFromJob_AlreadyInvoiced(t *testing.T) {
	svc, invoiceRepo, jobRepo, _, _ := setupInvoiceService()

	job := jobInStatus(domain.JobStatusCompleted)
	jobRepo.On("GetByID", mock.Anything, job.TenantID, job.ID).Return(job, nil)
	invoiceRepo.On("ExistsNonCreditForJob", mock.Anything, job.TenantID, job.ID).Return(true, nil)

	invoice, err := svc.CreateFromJob(context.Background(), job.TenantID, job.ID)

	assert.Nil(t, invoice)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	invoiceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// --- Send ---

func TestInvoiceService_Send_FromDraft(t *testing.T) {
	svc, invoiceRepo, _, _, clientRepo := setupInvoiceService()

	invoice := invoiceInStatus(domain.InvoiceStatusDraft, 100)
	invoiceRepo.On("GetByID", mock.Anything, invoice.TenantID, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("Update", mock.Anything, invoice).Return(nil)
	clientRepo.On("GetByID", mock.Anything, invoice.TenantID, invoice.ClientID).
		Return(&domain.Client{ID: invoice.ClientID, Name: "Acme"}, nil).Maybe()

	sent, err := svc.Send(context.Background(), invoice.TenantID, invoice.ID)

	assert.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusSent, sent.Status)
	assert.NotNil(t, sent.SentAt)
	assert.NotEmpty(t, sent.PublicToken)
}

func TestInvoiceService_Send_FromSent(t *testing.T) {
	svc, invoiceRepo, _, _, _ := setupInvoiceService()

	invoice := invoiceInStatus(domain.InvoiceStatusSent, 100)
	invoiceRepo.On("GetByID", mock.Anything, invoice.TenantID, invoice.ID).Return(invoice, nil)

	sent, err := svc.Send(context.Background(), invoice.TenantID, invoice.ID)

	assert.Nil(t, sent)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// --- RecordPayment ---

func TestInvoiceService_RecordPayment_FullPaymentMarksPaid(t *testing.T) {
	svc, invoiceRepo, _, _, _ := setupInvoiceService()

	invoice := invoiceInStatus(domain.InvoiceStatusSent, 100)
	invoiceRepo.On("GetByID", mock.Anything, invoice.TenantID, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("AddPayment", mock.Anything, mock.AnythingOfType("*domain.Payment")).Return(nil)
	invoiceRepo.On("ListPayments", mock.Anything, invoice.TenantID, invoice.ID).
		Return([]domain.Payment{{InvoiceID: invoice.ID, Amount: 100, Method: domain.PaymentMethodCard}}, nil)
	invoiceRepo.On("ListCreditNotesFor", mock.Anything, invoice.TenantID, invoice.ID).
		Return([]domain.Invoice{}, nil)
	invoiceRepo.On("Update", mock.Anything, invoice).Return(nil)

	detail, err := svc.RecordPayment(context.Background(), invoice.TenantID, invoice.ID, service.RecordPaymentInput{
		Amount: 100,
		Method: domain.PaymentMethodCard,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, detail.Invoice.Status)
	assert.NotNil(t, detail.Invoice.PaidAt)
	assert.Equal(t, 0.0, detail.Balance)
	invoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_RecordPayment_PartialLeavesUnpaid(t *testing.T) {
	svc, invoiceRepo, _, _, _ := setupInvoiceService()

	invoice := invoiceInStatus(domain.InvoiceStatusSent, 100)
	invoiceRepo.On("GetByID", mock.Anything, invoice.TenantID, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("AddPayment", mock.Anything, mock.AnythingOfType("*domain.Payment")).Return(nil)
	invoiceRepo.On("ListPayments", mock.Anything, invoice.TenantID, invoice.ID).
		Return([]domain.Payment{{InvoiceID: invoice.ID, Amount: 40, Method: domain.PaymentMethodCash}}, nil)
	invoiceRepo.On("ListCreditNotesFor", mock.Anything, invoice.TenantID, invoice.ID).
		Return([]domain.Invoice{}, nil)
	invoiceRepo.On("Update", mock.Anything, invoice).Return(nil)

	detail, err := svc.RecordPayment(context.Background(), invoice.TenantID, invoice.ID, service.RecordPaymentInput{
		Amount: 40,
		Method: domain.PaymentMethodCash,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusUnpaid, detail.Invoice.Status)
	assert.Nil(t, detail.Invoice.PaidAt)
	assert.Equal(t, 60.0, detail.Balance)
}

func TestInvoiceService_RecordPayment_CreditNoteRejected(t *testing.T) {
	svc, invoiceRepo, _, _, _ := setupInvoiceService()

	note := invoiceInStatus(domain.InvoiceStatusSent, 50)
	note.IsCreditNote = true
	invoiceRepo.On("GetByID", mock.Anything, note.TenantID, note.ID).Return(note, nil)

	detail, err := svc.RecordPayment(context.Background(), note.TenantID, note.ID, service.RecordPaymentInput{
		Amount: 50,
		Method: domain.PaymentMethodCash,
	})

	assert.Nil(t, detail)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	invoiceRepo.AssertNotCalled(t, "AddPayment", mock.Anything, mock.Anything)
}

func TestInvoiceService_RecordPayment_PaidInvoiceRejected(t *testing.T) {
	svc, invoiceRepo, _, _, _ := setupInvoiceService()

	invoice := invoiceInStatus(domain.InvoiceStatusPaid, 100)
	invoiceRepo.On("GetByID", mock.Anything, invoice.TenantID, invoice.ID).Return(invoice, nil)

	detail, err := svc.RecordPayment(context.Background(), invoice.TenantID, invoice.ID, service.RecordPaymentInput{
		Amount: 10,
		Method: domain.PaymentMethodCash,
	})

	assert.Nil(t, detail)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestInvoiceService_RecordPayment_InvalidAmount(t *testing.T) {
	svc, _, _, _, _ := setupInvoiceService()

	for _, amount := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		detail, err := svc.RecordPayment(context.Background(), uuid.New(), uuid.New(), service.RecordPaymentInput{
			Amount: amount,
			Method: domain.PaymentMethodCash,
		})
		assert.Nil(t, detail)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}

// --- IssueCreditNote ---

func TestInvoiceService_IssueCreditNote_SettlesTarget(t *testing.T) {
	svc, invoiceRepo, _, _, _ := setupInvoiceService()

	target := invoiceInStatus(domain.InvoiceStatusSent, 100)
	invoiceRepo.On("GetByID", mock.Anything, target.TenantID, target.ID).Return(target, nil)

	credit := domain.Invoice{
		ID:                 uuid.New(),
		TenantID:           target.TenantID,
		IsCreditNote:       true,
		CreditForInvoiceID: &target.ID,
	}
	credit.Total = 100

	invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	invoiceRepo.On("ListPayments", mock.Anything, target.TenantID, target.ID).
		Return([]domain.Payment{}, nil)
	invoiceRepo.On("ListCreditNotesFor", mock.Anything, target.TenantID, target.ID).
		Return([]domain.Invoice{credit}, nil)
	invoiceRepo.On("Update", mock.Anything, target).Return(nil)

	note, err := svc.IssueCreditNote(context.Background(), target.TenantID, target.ID, service.IssueCreditNoteInput{
		Amount: 100,
		Reason: "Damaged fence panel",
	})

	assert.NoError(t, err)
	assert.True(t, note.IsCreditNote)
	assert.Equal(t, &target.ID, note.CreditForInvoiceID)
	assert.Equal(t, domain.InvoiceStatusSent, note.Status)
	assert.InDelta(t, 100.0, note.Total, 1e-9)
	assert.Equal(t, "Damaged fence panel", note.LineItems[0].Name)
	assert.Equal(t, domain.InvoiceStatusPaid, target.Status)
}

func TestInvoiceService_IssueCreditNote_CreditNoteNotCreditable(t *testing.T) {
	svc, invoiceRepo, _, _, _ := setupInvoiceService()

	note := invoiceInStatus(domain.InvoiceStatusSent, 50)
	note.IsCreditNote = true
	invoiceRepo.On("GetByID", mock.Anything, note.TenantID, note.ID).Return(note, nil)

	result, err := svc.IssueCreditNote(context.Background(), note.TenantID, note.ID, service.IssueCreditNoteInput{
		Amount: 10,
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrCreditNoteNotCreditable)
	invoiceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// --- Balance ---

func TestInvoiceService_Balance_ClampsOverpayment(t *testing.T) {
	svc, invoiceRepo, _, _, _ := setupInvoiceService()

	invoice := invoiceInStatus(domain.InvoiceStatusUnpaid, 100)
	invoiceRepo.On("GetByID", mock.Anything, invoice.TenantID, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("ListPayments", mock.Anything, invoice.TenantID, invoice.ID).
		Return([]domain.Payment{{Amount: 150, Method: domain.PaymentMethodCash}}, nil)
	invoiceRepo.On("ListCreditNotesFor", mock.Anything, invoice.TenantID, invoice.ID).
		Return([]domain.Invoice{}, nil)

	balance, err := svc.Balance(context.Background(), invoice.TenantID, invoice.ID)

	assert.NoError(t, err)
	assert.Equal(t, 0.0, balance)
}

// --- Update ---

func TestInvoiceService_Update_SentInvoiceRejected(t *testing.T) {
	svc, invoiceRepo, _, _, _ := setupInvoiceService()

	invoice := invoiceInStatus(domain.InvoiceStatusSent, 100)
	invoiceRepo.On("GetByID", mock.Anything, invoice.TenantID, invoice.ID).Return(invoice, nil)

	subject := "Revised subject"
	result, err := svc.Update(context.Background(), invoice.TenantID, invoice.ID, service.UpdateInvoiceInput{
		Subject: &subject,
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
