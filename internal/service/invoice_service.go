package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"fieldos/internal/billing"
	"fieldos/internal/config"
	"fieldos/internal/domain"
	"fieldos/internal/port"
)

// CreateInvoiceInput is the DTO for creating an ad hoc draft invoice.
type CreateInvoiceInput struct {
	ClientID      uuid.UUID           `json:"client_id" binding:"required"`
	PropertyID    *uuid.UUID          `json:"property_id"`
	Subject       string              `json:"subject"`
	LineItems     []domain.LineItem   `json:"line_items"`
	TaxRate       *float64            `json:"tax_rate"`
	DiscountType  domain.DiscountType `json:"discount_type"`
	DiscountValue float64             `json:"discount_value"`
	DueTerm       string              `json:"due_term"`
}

// UpdateInvoiceInput is the DTO for editing a draft invoice.
type UpdateInvoiceInput struct {
	Subject       *string              `json:"subject"`
	LineItems     *[]domain.LineItem   `json:"line_items"`
	TaxRate       *float64             `json:"tax_rate"`
	DiscountType  *domain.DiscountType `json:"discount_type"`
	DiscountValue *float64             `json:"discount_value"`
	DueTerm       *string              `json:"due_term"`
}

// RecordPaymentInput is the DTO for recording a payment against an invoice.
type RecordPaymentInput struct {
	Amount float64              `json:"amount" binding:"required,gt=0"`
	Method domain.PaymentMethod `json:"method" binding:"required"`
}

// IssueCreditNoteInput is the DTO for issuing a credit note.
type IssueCreditNoteInput struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Reason string  `json:"reason"`
}

// InvoiceDetail bundles an invoice with its payments and outstanding balance.
type InvoiceDetail struct {
	Invoice  *domain.Invoice  `json:"invoice"`
	Payments []domain.Payment `json:"payments"`
	Balance  float64          `json:"balance"`
}

// InvoiceService defines the invoice lifecycle contract.
type InvoiceService interface {
	CreateFromJob(ctx context.Context, tenantID, jobID uuid.UUID) (*domain.Invoice, error)
	CreateDraft(ctx context.Context, tenantID uuid.UUID, input CreateInvoiceInput) (*domain.Invoice, error)
	GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceDetail, error)
	List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.Invoice, int, error)
	Update(ctx context.Context, tenantID, invoiceID uuid.UUID, input UpdateInvoiceInput) (*domain.Invoice, error)
	Send(ctx context.Context, tenantID, invoiceID uuid.UUID) (*domain.Invoice, error)
	RecordPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, input RecordPaymentInput) (*InvoiceDetail, error)
	IssueCreditNote(ctx context.Context, tenantID, invoiceID uuid.UUID, input IssueCreditNoteInput) (*domain.Invoice, error)
	Balance(ctx context.Context, tenantID, invoiceID uuid.UUID) (float64, error)

	// GetByPublicToken serves the unauthenticated client portal view.
	GetByPublicToken(ctx context.Context, token string) (*InvoiceDetail, error)

	// ExportLedger loads every invoice for the tenant together with its
	// reconciled balance, for CSV and XLSX export.
	ExportLedger(ctx context.Context, tenantID uuid.UUID) ([]domain.Invoice, map[uuid.UUID]float64, error)
}

type invoiceService struct {
	invoiceRepo port.InvoiceRepository
	jobRepo     port.JobRepository
	quoteRepo   port.QuoteRepository
	clientRepo  port.ClientRepository
	emailSender port.EmailSender
	events      port.EventPublisher
	cfg         config.BillingConfig
}

// NewInvoiceService creates a new InvoiceService implementation.
func NewInvoiceService(
	invoiceRepo port.InvoiceRepository,
	jobRepo port.JobRepository,
	quoteRepo port.QuoteRepository,
	clientRepo port.ClientRepository,
	emailSender port.EmailSender,
	events port.EventPublisher,
	cfg config.BillingConfig,
) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		jobRepo:     jobRepo,
		quoteRepo:   quoteRepo,
		clientRepo:  clientRepo,
		emailSender: emailSender,
		events:      events,
		cfg:         cfg,
	}
}

// CreateFromJob bills a completed job. Tax and discount settings are
// inherited from the quote the job was converted from; jobs created
// directly fall back to the tenant defaults. Rejected if the job is not
// completed or a non-credit invoice already references it.
func (s *invoiceService) CreateFromJob(ctx context.Context, tenantID, jobID uuid.UUID) (*domain.Invoice, error) {
	job, err := s.jobRepo.GetByID(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobStatusCompleted {
		return nil, fmt.Errorf("%w: job %s is not completed", domain.ErrInvalidTransition, job.JobNumber)
	}

	exists, err := s.invoiceRepo.ExistsNonCreditForJob(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: job %s is already invoiced", domain.ErrInvalidTransition, job.JobNumber)
	}

	taxRate := s.cfg.DefaultTaxRate
	discountType := domain.DiscountAmount
	discountValue := 0.0
	if job.QuoteID != nil {
		quote, err := s.quoteRepo.GetByID(ctx, tenantID, *job.QuoteID)
		if err != nil && !errors.Is(err, domain.ErrQuoteNotFound) {
			return nil, err
		}
		if quote != nil {
			taxRate = quote.TaxRate
			discountType = quote.DiscountType
			discountValue = quote.DiscountValue
		}
	}

	subject := job.Title
	if subject == "" {
		subject = fmt.Sprintf("Invoice for %s", job.JobNumber)
	}

	issueDate := time.Now().UTC()
	dueTerm := s.cfg.DefaultPaymentTerm

	invoice := &domain.Invoice{
		TenantID:         tenantID,
		ClientID:         job.ClientID,
		JobID:            &job.ID,
		PropertySnapshot: job.PropertySnapshot,
		Subject:          subject,
		Status:           domain.InvoiceStatusDraft,
		LineItems:        normalizeLineItems(job.LineItems),
		IssueDate:        issueDate,
		DueTerm:          dueTerm,
		DueDate:          billing.ResolveDueDate(issueDate, dueTerm),
		TaxRate:          taxRate,
		DiscountType:     discountType,
		DiscountValue:    discountValue,
		PublicToken:      uuid.NewString(),
	}
	invoice.Totals = billing.ComputeTotals(invoice.LineItems, invoice.DiscountType, invoice.DiscountValue, invoice.TaxRate)

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceService) CreateDraft(ctx context.Context, tenantID uuid.UUID, input CreateInvoiceInput) (*domain.Invoice, error) {
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

	taxRate := s.cfg.DefaultTaxRate
	if input.TaxRate != nil {
		taxRate = *input.TaxRate
	}
	discountType := input.DiscountType
	if discountType == "" {
		discountType = domain.DiscountAmount
	}
	dueTerm := input.DueTerm
	if dueTerm == "" {
		dueTerm = s.cfg.DefaultPaymentTerm
	}
	subject := input.Subject
	if subject == "" {
		subject = fmt.Sprintf("Invoice for %s", client.Name)
	}

	issueDate := time.Now().UTC()
	invoice := &domain.Invoice{
		TenantID:         tenantID,
		ClientID:         input.ClientID,
		PropertySnapshot: snapshot,
		Subject:          subject,
		Status:           domain.InvoiceStatusDraft,
		LineItems:        normalizeLineItems(input.LineItems),
		IssueDate:        issueDate,
		DueTerm:          dueTerm,
		DueDate:          billing.ResolveDueDate(issueDate, dueTerm),
		TaxRate:          taxRate,
		DiscountType:     discountType,
		DiscountValue:    input.DiscountValue,
		PublicToken:      uuid.NewString(),
	}
	invoice.Totals = billing.ComputeTotals(invoice.LineItems, invoice.DiscountType, invoice.DiscountValue, invoice.TaxRate)

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceService) GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceDetail, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, invoice)
}

func (s *invoiceService) List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.Invoice, int, error) {
	return s.invoiceRepo.ListByTenant(ctx, tenantID, offset, limit)
}

// Update edits a draft. Sent and paid invoices are immutable except
// through payments and credit notes; credit notes are immutable outright.
func (s *invoiceService) Update(ctx context.Context, tenantID, invoiceID uuid.UUID, input UpdateInvoiceInput) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.IsCreditNote {
		return nil, fmt.Errorf("%w: credit notes cannot be edited", domain.ErrInvalidTransition)
	}
	if invoice.Status != domain.InvoiceStatusDraft {
		return nil, fmt.Errorf("%w: only draft invoices can be edited", domain.ErrInvalidTransition)
	}

	if input.Subject != nil {
		invoice.Subject = *input.Subject
	}
	if input.LineItems != nil {
		invoice.LineItems = normalizeLineItems(*input.LineItems)
	}
	if input.TaxRate != nil {
		invoice.TaxRate = *input.TaxRate
	}
	if input.DiscountType != nil {
		invoice.DiscountType = *input.DiscountType
	}
	if input.DiscountValue != nil {
		invoice.DiscountValue = *input.DiscountValue
	}
	if input.DueTerm != nil {
		invoice.DueTerm = *input.DueTerm
		invoice.DueDate = billing.ResolveDueDate(invoice.IssueDate, invoice.DueTerm)
	}

	invoice.Totals = billing.ComputeTotals(invoice.LineItems, invoice.DiscountType, invoice.DiscountValue, invoice.TaxRate)

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceService) Send(ctx context.Context, tenantID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != domain.InvoiceStatusDraft {
		return nil, fmt.Errorf("%w: cannot send invoice in status %q", domain.ErrInvalidTransition, invoice.Status)
	}

	now := time.Now().UTC()
	invoice.Status = domain.InvoiceStatusSent
	invoice.SentAt = &now
	if invoice.PublicToken == "" {
		invoice.PublicToken = uuid.NewString()
	}

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventInvoiceSent, invoice.TenantID, invoice.ID)
	s.emailInvoice(ctx, invoice)
	return invoice, nil
}

// RecordPayment appends a payment and re-reconciles the invoice. When the
// outstanding balance reaches zero the invoice transitions to Paid.
func (s *invoiceService) RecordPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, input RecordPaymentInput) (*InvoiceDetail, error) {
	if input.Amount <= 0 || math.IsNaN(input.Amount) || math.IsInf(input.Amount, 0) {
		return nil, fmt.Errorf("%w: payment amount must be a positive number", domain.ErrValidation)
	}

	invoice, err := s.invoiceRepo.GetByID(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.IsCreditNote {
		return nil, fmt.Errorf("%w: credit notes cannot accept payments", domain.ErrInvalidTransition)
	}
	if invoice.Status == domain.InvoiceStatusPaid {
		return nil, fmt.Errorf("%w: invoice is already paid", domain.ErrInvalidTransition)
	}

	payment := &domain.Payment{
		TenantID:  tenantID,
		InvoiceID: invoiceID,
		Amount:    input.Amount,
		Method:    input.Method,
	}
	if err := s.invoiceRepo.AddPayment(ctx, payment); err != nil {
		return nil, err
	}

	return s.reconcile(ctx, invoice)
}

// IssueCreditNote creates a credit note offsetting part or all of the
// target invoice. Credit notes are born Sent, carry no balance of their
// own, and can never be credited themselves.
func (s *invoiceService) IssueCreditNote(ctx context.Context, tenantID, invoiceID uuid.UUID, input IssueCreditNoteInput) (*domain.Invoice, error) {
	if input.Amount <= 0 || math.IsNaN(input.Amount) || math.IsInf(input.Amount, 0) {
		return nil, fmt.Errorf("%w: credit amount must be a positive number", domain.ErrValidation)
	}

	target, err := s.invoiceRepo.GetByID(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if target.IsCreditNote {
		return nil, domain.ErrCreditNoteNotCreditable
	}

	name := "Credit"
	if input.Reason != "" {
		name = input.Reason
	}

	now := time.Now().UTC()
	note := &domain.Invoice{
		TenantID:         tenantID,
		ClientID:         target.ClientID,
		JobID:            target.JobID,
		PropertySnapshot: target.PropertySnapshot,
		Subject:          fmt.Sprintf("Credit note for %s", target.InvoiceNumber),
		Status:           domain.InvoiceStatusSent,
		LineItems: domain.LineItems{{
			Kind:      domain.LineItemPriced,
			Name:      name,
			Quantity:  1,
			UnitPrice: input.Amount,
		}},
		IssueDate:          now,
		DueTerm:            target.DueTerm,
		DueDate:            now,
		DiscountType:       domain.DiscountAmount,
		IsCreditNote:       true,
		CreditForInvoiceID: &target.ID,
		SentAt:             &now,
	}
	note.Totals = billing.ComputeTotals(note.LineItems, note.DiscountType, note.DiscountValue, note.TaxRate)

	if err := s.invoiceRepo.Create(ctx, note); err != nil {
		return nil, err
	}

	// The credit may have settled the target's remaining balance.
	if _, err := s.reconcile(ctx, target); err != nil {
		log.Printf("invoiceService.IssueCreditNote: reconcile %s: %v", target.InvoiceNumber, err)
	}
	return note, nil
}

func (s *invoiceService) Balance(ctx context.Context, tenantID, invoiceID uuid.UUID) (float64, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, tenantID, invoiceID)
	if err != nil {
		return 0, err
	}
	return s.balanceOf(ctx, invoice)
}

func (s *invoiceService) GetByPublicToken(ctx context.Context, token string) (*InvoiceDetail, error) {
	invoice, err := s.invoiceRepo.GetByPublicToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, invoice)
}

func (s *invoiceService) ExportLedger(ctx context.Context, tenantID uuid.UUID) ([]domain.Invoice, map[uuid.UUID]float64, error) {
	const pageSize = 500
	var invoices []domain.Invoice
	for offset := 0; ; offset += pageSize {
		page, total, err := s.invoiceRepo.ListByTenant(ctx, tenantID, offset, pageSize)
		if err != nil {
			return nil, nil, err
		}
		invoices = append(invoices, page...)
		if offset+pageSize >= total || len(page) == 0 {
			break
		}
	}

	balances := make(map[uuid.UUID]float64, len(invoices))
	for i := range invoices {
		balance, err := s.balanceOf(ctx, &invoices[i])
		if err != nil {
			return nil, nil, err
		}
		balances[invoices[i].ID] = balance
	}
	return invoices, balances, nil
}

func (s *invoiceService) balanceOf(ctx context.Context, invoice *domain.Invoice) (float64, error) {
	payments, err := s.invoiceRepo.ListPayments(ctx, invoice.TenantID, invoice.ID)
	if err != nil {
		return 0, err
	}
	credits, err := s.invoiceRepo.ListCreditNotesFor(ctx, invoice.TenantID, invoice.ID)
	if err != nil {
		return 0, err
	}
	return billing.Balance(invoice, payments, credits), nil
}

// reconcile recomputes the balance and flips the invoice to Paid when it
// reaches zero, or to Unpaid when a sent invoice still carries a balance.
func (s *invoiceService) reconcile(ctx context.Context, invoice *domain.Invoice) (*InvoiceDetail, error) {
	balance, err := s.balanceOf(ctx, invoice)
	if err != nil {
		return nil, err
	}

	changed := false
	if balance == 0 && invoice.Status != domain.InvoiceStatusPaid {
		now := time.Now().UTC()
		invoice.Status = domain.InvoiceStatusPaid
		invoice.PaidAt = &now
		changed = true
	} else if balance > 0 && invoice.Status == domain.InvoiceStatusSent {
		invoice.Status = domain.InvoiceStatusUnpaid
		changed = true
	}

	if changed {
		if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
			return nil, err
		}
		if invoice.Status == domain.InvoiceStatusPaid {
			s.publish(ctx, domain.EventInvoicePaid, invoice.TenantID, invoice.ID)
		}
	}

	payments, err := s.invoiceRepo.ListPayments(ctx, invoice.TenantID, invoice.ID)
	if err != nil {
		return nil, err
	}
	return &InvoiceDetail{Invoice: invoice, Payments: payments, Balance: balance}, nil
}

func (s *invoiceService) detail(ctx context.Context, invoice *domain.Invoice) (*InvoiceDetail, error) {
	balance, err := s.balanceOf(ctx, invoice)
	if err != nil {
		return nil, err
	}
	payments, err := s.invoiceRepo.ListPayments(ctx, invoice.TenantID, invoice.ID)
	if err != nil {
		return nil, err
	}
	return &InvoiceDetail{Invoice: invoice, Payments: payments, Balance: balance}, nil
}

func (s *invoiceService) publish(ctx context.Context, eventType domain.EventType, tenantID, entityID uuid.UUID) {
	event := domain.Event{
		Type:       eventType,
		TenantID:   tenantID,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		log.Printf("invoiceService: publish %s: %v", eventType, err)
	}
}

func (s *invoiceService) emailInvoice(ctx context.Context, invoice *domain.Invoice) {
	client, err := s.clientRepo.GetByID(ctx, invoice.TenantID, invoice.ClientID)
	if err != nil || client.Email == "" {
		return
	}
	if err := s.emailSender.SendInvoiceEmail(ctx, client.Email, client.Name, invoice.InvoiceNumber, invoice.PublicToken, invoice.Total); err != nil {
		log.Printf("invoiceService: email invoice %s: %v", invoice.InvoiceNumber, err)
	}
}

// normalizeLineItems defaults the kind of untyped rows: rows with pricing
// data become priced items, the rest display-only text.
func normalizeLineItems(items []domain.LineItem) domain.LineItems {
	out := make(domain.LineItems, len(items))
	for i, item := range items {
		if item.Kind == "" {
			if item.Quantity != 0 || item.UnitPrice != 0 {
				item.Kind = domain.LineItemPriced
			} else {
				item.Kind = domain.LineItemText
			}
		}
		out[i] = item
	}
	return out
}
