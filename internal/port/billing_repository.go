package port

import (
	"context"

	"github.com/google/uuid"

	"fieldos/internal/domain"
)

// QuoteRepository defines the contract for quote persistence. Create
// allocates the quote number from the tenant's counter and inserts the
// quote in one atomic transaction: on success quote.QuoteNumber is set, on
// failure no number is consumed.
type QuoteRepository interface {
	Create(ctx context.Context, quote *domain.Quote) error
	GetByID(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Quote, error)
	GetByApprovalToken(ctx context.Context, token string) (*domain.Quote, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.Quote, int, error)
	Update(ctx context.Context, quote *domain.Quote) error
}

// JobRepository defines the contract for job persistence. Create allocates
// the job number transactionally, like QuoteRepository.Create.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	GetByID(ctx context.Context, tenantID, jobID uuid.UUID) (*domain.Job, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.Job, int, error)
	Update(ctx context.Context, job *domain.Job) error
}

// InvoiceRepository defines the contract for invoice and payment
// persistence. Create allocates the invoice number transactionally; credit
// notes draw from the same counter. Payments are append-only.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice) error
	GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*domain.Invoice, error)
	GetByPublicToken(ctx context.Context, token string) (*domain.Invoice, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.Invoice, int, error)
	Update(ctx context.Context, invoice *domain.Invoice) error

	// ExistsNonCreditForJob reports whether any non-credit invoice already
	// references the given job. Guards duplicate invoice creation on
	// repeated job completion.
	ExistsNonCreditForJob(ctx context.Context, tenantID, jobID uuid.UUID) (bool, error)

	AddPayment(ctx context.Context, payment *domain.Payment) error
	ListPayments(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]domain.Payment, error)
	ListCreditNotesFor(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]domain.Invoice, error)
}

// AttachmentRepository defines the contract for job attachment metadata.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	GetByID(ctx context.Context, tenantID, attachmentID uuid.UUID) (*domain.Attachment, error)
	ListByJob(ctx context.Context, tenantID, jobID uuid.UUID) ([]domain.Attachment, error)
	UpdateStatus(ctx context.Context, tenantID, attachmentID uuid.UUID, status domain.AttachmentStatus) error
	Delete(ctx context.Context, tenantID, attachmentID uuid.UUID) error
}
