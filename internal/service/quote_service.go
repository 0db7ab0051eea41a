package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"fieldos/internal/billing"
	"fieldos/internal/domain"
	"fieldos/internal/port"
)

// CreateQuoteInput is the DTO for creating a quote.
type CreateQuoteInput struct {
	ClientID      uuid.UUID           `json:"client_id" binding:"required"`
	PropertyID    *uuid.UUID          `json:"property_id"`
	Title         string              `json:"title"`
	LineItems     []domain.LineItem   `json:"line_items"`
	TaxRate       float64             `json:"tax_rate"`
	DiscountType  domain.DiscountType `json:"discount_type"`
	DiscountValue float64             `json:"discount_value"`
}

// UpdateQuoteInput is the DTO for editing a quote.
type UpdateQuoteInput struct {
	Title         *string              `json:"title"`
	PropertyID    *uuid.UUID           `json:"property_id"`
	LineItems     *[]domain.LineItem   `json:"line_items"`
	TaxRate       *float64             `json:"tax_rate"`
	DiscountType  *domain.DiscountType `json:"discount_type"`
	DiscountValue *float64             `json:"discount_value"`
}

// RespondInput carries the client-side approval or decline signature.
type RespondInput struct {
	Name string `json:"name" binding:"required"`
}

// QuoteService defines the quote lifecycle contract.
type QuoteService interface {
	Create(ctx context.Context, tenantID uuid.UUID, input CreateQuoteInput) (*domain.Quote, error)
	GetByID(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Quote, error)
	List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.Quote, int, error)
	Update(ctx context.Context, tenantID, quoteID uuid.UUID, input UpdateQuoteInput) (*domain.Quote, error)

	Send(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Quote, error)
	Approve(ctx context.Context, tenantID, quoteID uuid.UUID, signerName string) (*domain.Quote, error)
	Decline(ctx context.Context, tenantID, quoteID uuid.UUID, signerName string) (*domain.Quote, error)
	Archive(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Quote, error)
	Revert(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Quote, error)
	Convert(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Job, error)
	CreateSimilar(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Quote, error)

	// Token operations serve the unauthenticated client portal.
	GetByApprovalToken(ctx context.Context, token string) (*domain.Quote, error)
	ApproveByToken(ctx context.Context, token, signerName string) (*domain.Quote, error)
	DeclineByToken(ctx context.Context, token, signerName string) (*domain.Quote, error)
}

type quoteService struct {
	quoteRepo   port.QuoteRepository
	clientRepo  port.ClientRepository
	jobSvc      JobService
	emailSender port.EmailSender
	events      port.EventPublisher
}

// NewQuoteService creates a new QuoteService implementation.
func NewQuoteService(
	quoteRepo port.QuoteRepository,
	clientRepo port.ClientRepository,
	jobSvc JobService,
	emailSender port.EmailSender,
	events port.EventPublisher,
) QuoteService {
	return &quoteService{
		quoteRepo:   quoteRepo,
		clientRepo:  clientRepo,
		jobSvc:      jobSvc,
		emailSender: emailSender,
		events:      events,
	}
}

func (s *quoteService) Create(ctx context.Context, tenantID uuid.UUID, input CreateQuoteInput) (*domain.Quote, error) {
	if _, err := s.clientRepo.GetByID(ctx, tenantID, input.ClientID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrClientNotFound
		}
		return nil, err
	}
	if input.PropertyID != nil {
		if _, err := s.clientRepo.GetProperty(ctx, tenantID, *input.PropertyID); err != nil {
			return nil, err
		}
	}

	discountType := input.DiscountType
	if discountType == "" {
		discountType = domain.DiscountAmount
	}

	quote := &domain.Quote{
		TenantID:      tenantID,
		ClientID:      input.ClientID,
		PropertyID:    input.PropertyID,
		Title:         input.Title,
		Status:        domain.QuoteStatusDraft,
		LineItems:     normalizeLineItems(input.LineItems),
		TaxRate:       input.TaxRate,
		DiscountType:  discountType,
		DiscountValue: input.DiscountValue,
	}
	quote.Totals = billing.ComputeTotals(quote.LineItems, quote.DiscountType, quote.DiscountValue, quote.TaxRate)

	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

func (s *quoteService) GetByID(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Quote, error) {
	return s.quoteRepo.GetByID(ctx, tenantID, quoteID)
}

func (s *quoteService) List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.Quote, int, error) {
	return s.quoteRepo.ListByTenant(ctx, tenantID, offset, limit)
}

// Update edits the quote and recomputes its totals. Converted and
// archived quotes are immutable.
func (s *quoteService) Update(ctx context.Context, tenantID, quoteID uuid.UUID, input UpdateQuoteInput) (*domain.Quote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, tenantID, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.Status == domain.QuoteStatusConverted || quote.Status == domain.QuoteStatusArchived {
		return nil, fmt.Errorf("%w: cannot edit quote in status %q", domain.ErrInvalidTransition, quote.Status)
	}

	if input.Title != nil {
		quote.Title = *input.Title
	}
	if input.PropertyID != nil {
		if _, err := s.clientRepo.GetProperty(ctx, tenantID, *input.PropertyID); err != nil {
			return nil, err
		}
		quote.PropertyID = input.PropertyID
	}
	if input.LineItems != nil {
		quote.LineItems = normalizeLineItems(*input.LineItems)
	}
	if input.TaxRate != nil {
		quote.TaxRate = *input.TaxRate
	}
	if input.DiscountType != nil {
		quote.DiscountType = *input.DiscountType
	}
	if input.DiscountValue != nil {
		quote.DiscountValue = *input.DiscountValue
	}

	quote.Totals = billing.ComputeTotals(quote.LineItems, quote.DiscountType, quote.DiscountValue, quote.TaxRate)

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

// Send puts the quote in front of the client. Allowed from Draft and,
// for resends after requested changes, from Changes Requested. The first
// send stamps SentAt and mints the approval token.
func (s *quoteService) Send(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Quote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, tenantID, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.Status != domain.QuoteStatusDraft && quote.Status != domain.QuoteStatusChangesRequested {
		return nil, fmt.Errorf("%w: cannot send quote in status %q", domain.ErrInvalidTransition, quote.Status)
	}

	quote.Status = domain.QuoteStatusAwaitingResponse
	if quote.SentAt == nil {
		now := time.Now().UTC()
		quote.SentAt = &now
	}
	if quote.ApprovalToken == "" {
		quote.ApprovalToken = uuid.NewString()
	}

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventQuoteSent, quote.TenantID, quote.ID)
	s.emailQuote(ctx, quote)
	return quote, nil
}

func (s *quoteService) Approve(ctx context.Context, tenantID, quoteID uuid.UUID, signerName string) (*domain.Quote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, tenantID, quoteID)
	if err != nil {
		return nil, err
	}
	return s.approve(ctx, quote, signerName)
}

func (s *quoteService) Decline(ctx context.Context, tenantID, quoteID uuid.UUID, signerName string) (*domain.Quote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, tenantID, quoteID)
	if err != nil {
		return nil, err
	}
	return s.decline(ctx, quote, signerName)
}

// Archive shelves a quote the client never responded to. A quote can
// only be archived while awaiting a response: drafts, approved, and
// converted quotes are rejected.
func (s *quoteService) Archive(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Quote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, tenantID, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.Status != domain.QuoteStatusAwaitingResponse {
		return nil, fmt.Errorf("%w: cannot archive quote in status %q", domain.ErrInvalidTransition, quote.Status)
	}

	now := time.Now().UTC()
	quote.Status = domain.QuoteStatusArchived
	quote.ArchivedAt = &now

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

// Revert undoes a send, returning the quote to Draft and clearing any
// client response. Converted and archived quotes cannot be reverted.
func (s *quoteService) Revert(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Quote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, tenantID, quoteID)
	if err != nil {
		return nil, err
	}
	switch quote.Status {
	case domain.QuoteStatusAwaitingResponse, domain.QuoteStatusChangesRequested, domain.QuoteStatusApproved:
	default:
		return nil, fmt.Errorf("%w: cannot revert quote in status %q", domain.ErrInvalidTransition, quote.Status)
	}

	quote.Status = domain.QuoteStatusDraft
	quote.ApprovedAt = nil
	quote.ApprovedByName = ""
	quote.DeclinedAt = nil
	quote.DeclinedByName = ""

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

// Convert turns an approved quote into a job. The job is created first;
// the quote transitions to Converted only after the job exists.
func (s *quoteService) Convert(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Job, error) {
	quote, err := s.quoteRepo.GetByID(ctx, tenantID, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.Status != domain.QuoteStatusApproved {
		return nil, fmt.Errorf("%w: cannot convert quote in status %q", domain.ErrInvalidTransition, quote.Status)
	}

	client, err := s.clientRepo.GetByID(ctx, tenantID, quote.ClientID)
	if err != nil {
		return nil, err
	}

	job, err := s.jobSvc.CreateFromQuote(ctx, quote, client.Name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	quote.Status = domain.QuoteStatusConverted
	quote.ConvertedAt = &now
	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, err
	}
	return job, nil
}

// CreateSimilar duplicates a quote as a fresh draft with a new number,
// stripping the send and response history.
func (s *quoteService) CreateSimilar(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Quote, error) {
	source, err := s.quoteRepo.GetByID(ctx, tenantID, quoteID)
	if err != nil {
		return nil, err
	}

	items := make(domain.LineItems, len(source.LineItems))
	copy(items, source.LineItems)

	quote := &domain.Quote{
		TenantID:      tenantID,
		ClientID:      source.ClientID,
		PropertyID:    source.PropertyID,
		Title:         source.Title,
		Status:        domain.QuoteStatusDraft,
		LineItems:     items,
		TaxRate:       source.TaxRate,
		DiscountType:  source.DiscountType,
		DiscountValue: source.DiscountValue,
	}
	quote.Totals = billing.ComputeTotals(quote.LineItems, quote.DiscountType, quote.DiscountValue, quote.TaxRate)

	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

func (s *quoteService) GetByApprovalToken(ctx context.Context, token string) (*domain.Quote, error) {
	return s.quoteRepo.GetByApprovalToken(ctx, token)
}

func (s *quoteService) ApproveByToken(ctx context.Context, token, signerName string) (*domain.Quote, error) {
	quote, err := s.quoteRepo.GetByApprovalToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.approve(ctx, quote, signerName)
}

func (s *quoteService) DeclineByToken(ctx context.Context, token, signerName string) (*domain.Quote, error) {
	quote, err := s.quoteRepo.GetByApprovalToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.decline(ctx, quote, signerName)
}

func (s *quoteService) approve(ctx context.Context, quote *domain.Quote, signerName string) (*domain.Quote, error) {
	if quote.Status != domain.QuoteStatusAwaitingResponse {
		return nil, fmt.Errorf("%w: cannot approve quote in status %q", domain.ErrInvalidTransition, quote.Status)
	}

	now := time.Now().UTC()
	quote.Status = domain.QuoteStatusApproved
	quote.ApprovedAt = &now
	quote.ApprovedByName = signerName

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventQuoteApproved, quote.TenantID, quote.ID)
	return quote, nil
}

func (s *quoteService) decline(ctx context.Context, quote *domain.Quote, signerName string) (*domain.Quote, error) {
	if quote.Status != domain.QuoteStatusAwaitingResponse {
		return nil, fmt.Errorf("%w: cannot decline quote in status %q", domain.ErrInvalidTransition, quote.Status)
	}

	now := time.Now().UTC()
	quote.Status = domain.QuoteStatusChangesRequested
	quote.DeclinedAt = &now
	quote.DeclinedByName = signerName

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventQuoteDeclined, quote.TenantID, quote.ID)
	return quote, nil
}

func (s *quoteService) publish(ctx context.Context, eventType domain.EventType, tenantID, entityID uuid.UUID) {
	event := domain.Event{
		Type:       eventType,
		TenantID:   tenantID,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		log.Printf("quoteService: publish %s: %v", eventType, err)
	}
}

func (s *quoteService) emailQuote(ctx context.Context, quote *domain.Quote) {
	client, err := s.clientRepo.GetByID(ctx, quote.TenantID, quote.ClientID)
	if err != nil || client.Email == "" {
		return
	}
	if err := s.emailSender.SendQuoteApprovalEmail(ctx, client.Email, client.Name, quote.QuoteNumber, quote.ApprovalToken); err != nil {
		log.Printf("quoteService: email quote %s: %v", quote.QuoteNumber, err)
	}
}
