package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fieldos/internal/domain"
	"fieldos/internal/port"
)

type quoteRepo struct {
	db           *sqlx.DB
	allocRetries int
}

// NewQuoteRepo creates a new PostgreSQL-backed QuoteRepository.
// allocRetries bounds how often a conflicting numbering transaction is
// re-attempted before Create fails with ErrSequenceConflict.
func NewQuoteRepo(db *sqlx.DB, allocRetries int) port.QuoteRepository {
	return &quoteRepo{db: db, allocRetries: allocRetries}
}

func (r *quoteRepo) Create(ctx context.Context, quote *domain.Quote) error {
	quote.ID = uuid.New()
	now := time.Now().UTC()
	quote.CreatedAt = now
	quote.UpdatedAt = now

	number, err := createNumbered(ctx, r.db, r.allocRetries, quote.TenantID, domain.CounterQuote,
		func(tx *sqlx.Tx, number string) error {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO quotes (
					id, tenant_id, client_id, property_id, title, quote_number, status,
					line_items, tax_rate, discount_type, discount_value,
					subtotal_before_discount, line_discount_total, discount_amount,
					tax_amount, total, original_total, total_savings,
					approval_token, approved_by_name, declined_by_name,
					sent_at, approved_at, declined_at, converted_at, archived_at,
					created_at, updated_at
				) VALUES (
					$1, $2, $3, $4, $5, $6, $7,
					$8, $9, $10, $11,
					$12, $13, $14,
					$15, $16, $17, $18,
					$19, $20, $21,
					$22, $23, $24, $25, $26,
					$27, $28
				)`,
				quote.ID, quote.TenantID, quote.ClientID, quote.PropertyID, quote.Title, number, quote.Status,
				quote.LineItems, quote.TaxRate, quote.DiscountType, quote.DiscountValue,
				quote.SubtotalBeforeDiscount, quote.LineDiscountTotal, quote.DiscountAmount,
				quote.TaxAmount, quote.Total, quote.OriginalTotal, quote.TotalSavings,
				quote.ApprovalToken, quote.ApprovedByName, quote.DeclinedByName,
				quote.SentAt, quote.ApprovedAt, quote.DeclinedAt, quote.ConvertedAt, quote.ArchivedAt,
				quote.CreatedAt, quote.UpdatedAt)
			if err != nil {
				return fmt.Errorf("quoteRepo.Create insert: %w", err)
			}
			return nil
		})
	if err != nil {
		return err
	}

	quote.QuoteNumber = number
	return nil
}

func (r *quoteRepo) GetByID(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.GetContext(ctx, &quote,
		"SELECT * FROM quotes WHERE id = $1 AND tenant_id = $2", quoteID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrQuoteNotFound
		}
		return nil, fmt.Errorf("quoteRepo.GetByID: %w", err)
	}
	return &quote, nil
}

func (r *quoteRepo) GetByApprovalToken(ctx context.Context, token string) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.GetContext(ctx, &quote,
		"SELECT * FROM quotes WHERE approval_token = $1", token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrQuoteNotFound
		}
		return nil, fmt.Errorf("quoteRepo.GetByApprovalToken: %w", err)
	}
	return &quote, nil
}

func (r *quoteRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.Quote, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM quotes WHERE tenant_id = $1", tenantID)
	if err != nil {
		return nil, 0, fmt.Errorf("quoteRepo.ListByTenant count: %w", err)
	}

	var quotes []domain.Quote
	err = r.db.SelectContext(ctx, &quotes,
		`SELECT * FROM quotes WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		tenantID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("quoteRepo.ListByTenant: %w", err)
	}
	return quotes, total, nil
}

// Update persists every mutable field. The quote number is immutable once
// allocated and is deliberately absent from the SET list.
func (r *quoteRepo) Update(ctx context.Context, quote *domain.Quote) error {
	quote.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE quotes SET
			client_id = $1, property_id = $2, title = $3, status = $4,
			line_items = $5, tax_rate = $6, discount_type = $7, discount_value = $8,
			subtotal_before_discount = $9, line_discount_total = $10, discount_amount = $11,
			tax_amount = $12, total = $13, original_total = $14, total_savings = $15,
			approval_token = $16, approved_by_name = $17, declined_by_name = $18,
			sent_at = $19, approved_at = $20, declined_at = $21, converted_at = $22, archived_at = $23,
			updated_at = $24
		 WHERE id = $25 AND tenant_id = $26`,
		quote.ClientID, quote.PropertyID, quote.Title, quote.Status,
		quote.LineItems, quote.TaxRate, quote.DiscountType, quote.DiscountValue,
		quote.SubtotalBeforeDiscount, quote.LineDiscountTotal, quote.DiscountAmount,
		quote.TaxAmount, quote.Total, quote.OriginalTotal, quote.TotalSavings,
		quote.ApprovalToken, quote.ApprovedByName, quote.DeclinedByName,
		quote.SentAt, quote.ApprovedAt, quote.DeclinedAt, quote.ConvertedAt, quote.ArchivedAt,
		quote.UpdatedAt,
		quote.ID, quote.TenantID)
	if err != nil {
		return fmt.Errorf("quoteRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrQuoteNotFound
	}
	return nil
}
