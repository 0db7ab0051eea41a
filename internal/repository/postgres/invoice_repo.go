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

type invoiceRepo struct {
	db           *sqlx.DB
	allocRetries int
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB, allocRetries int) port.InvoiceRepository {
	return &invoiceRepo{db: db, allocRetries: allocRetries}
}

// Create allocates the invoice number and inserts the invoice atomically.
// Credit notes draw from the same counter as regular invoices.
func (r *invoiceRepo) Create(ctx context.Context, invoice *domain.Invoice) error {
	invoice.ID = uuid.New()
	now := time.Now().UTC()
	invoice.CreatedAt = now
	invoice.UpdatedAt = now

	number, err := createNumbered(ctx, r.db, r.allocRetries, invoice.TenantID, domain.CounterInvoice,
		func(tx *sqlx.Tx, number string) error {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO invoices (
					id, tenant_id, client_id, job_id, property_snapshot, subject,
					invoice_number, status, line_items, issue_date, due_term, due_date,
					tax_rate, discount_type, discount_value,
					subtotal_before_discount, line_discount_total, discount_amount,
					tax_amount, total, original_total, total_savings,
					is_credit_note, credit_for_invoice_id, public_token,
					sent_at, paid_at, created_at, updated_at
				) VALUES (
					$1, $2, $3, $4, $5, $6,
					$7, $8, $9, $10, $11, $12,
					$13, $14, $15,
					$16, $17, $18,
					$19, $20, $21, $22,
					$23, $24, $25,
					$26, $27, $28, $29
				)`,
				invoice.ID, invoice.TenantID, invoice.ClientID, invoice.JobID, invoice.PropertySnapshot, invoice.Subject,
				number, invoice.Status, invoice.LineItems, invoice.IssueDate, invoice.DueTerm, invoice.DueDate,
				invoice.TaxRate, invoice.DiscountType, invoice.DiscountValue,
				invoice.SubtotalBeforeDiscount, invoice.LineDiscountTotal, invoice.DiscountAmount,
				invoice.TaxAmount, invoice.Total, invoice.OriginalTotal, invoice.TotalSavings,
				invoice.IsCreditNote, invoice.CreditForInvoiceID, invoice.PublicToken,
				invoice.SentAt, invoice.PaidAt, invoice.CreatedAt, invoice.UpdatedAt)
			if err != nil {
				return fmt.Errorf("invoiceRepo.Create insert: %w", err)
			}
			return nil
		})
	if err != nil {
		return err
	}

	invoice.InvoiceNumber = number
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.GetContext(ctx, &invoice,
		"SELECT * FROM invoices WHERE id = $1 AND tenant_id = $2", invoiceID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", err)
	}
	return &invoice, nil
}

func (r *invoiceRepo) GetByPublicToken(ctx context.Context, token string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.GetContext(ctx, &invoice,
		"SELECT * FROM invoices WHERE public_token = $1", token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByPublicToken: %w", err)
	}
	return &invoice, nil
}

func (r *invoiceRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.Invoice, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM invoices WHERE tenant_id = $1", tenantID)
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.ListByTenant count: %w", err)
	}

	var invoices []domain.Invoice
	err = r.db.SelectContext(ctx, &invoices,
		`SELECT * FROM invoices WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		tenantID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.ListByTenant: %w", err)
	}
	return invoices, total, nil
}

// Update persists every mutable field. Invoice number, credit-note flag,
// and credit target are immutable after creation.
func (r *invoiceRepo) Update(ctx context.Context, invoice *domain.Invoice) error {
	invoice.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET
			client_id = $1, job_id = $2, property_snapshot = $3, subject = $4,
			status = $5, line_items = $6, issue_date = $7, due_term = $8, due_date = $9,
			tax_rate = $10, discount_type = $11, discount_value = $12,
			subtotal_before_discount = $13, line_discount_total = $14, discount_amount = $15,
			tax_amount = $16, total = $17, original_total = $18, total_savings = $19,
			public_token = $20, sent_at = $21, paid_at = $22, updated_at = $23
		 WHERE id = $24 AND tenant_id = $25`,
		invoice.ClientID, invoice.JobID, invoice.PropertySnapshot, invoice.Subject,
		invoice.Status, invoice.LineItems, invoice.IssueDate, invoice.DueTerm, invoice.DueDate,
		invoice.TaxRate, invoice.DiscountType, invoice.DiscountValue,
		invoice.SubtotalBeforeDiscount, invoice.LineDiscountTotal, invoice.DiscountAmount,
		invoice.TaxAmount, invoice.Total, invoice.OriginalTotal, invoice.TotalSavings,
		invoice.PublicToken, invoice.SentAt, invoice.PaidAt, invoice.UpdatedAt,
		invoice.ID, invoice.TenantID)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

func (r *invoiceRepo) ExistsNonCreditForJob(ctx context.Context, tenantID, jobID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(
			SELECT 1 FROM invoices
			WHERE tenant_id = $1 AND job_id = $2 AND is_credit_note = FALSE
		)`, tenantID, jobID)
	if err != nil {
		return false, fmt.Errorf("invoiceRepo.ExistsNonCreditForJob: %w", err)
	}
	return exists, nil
}

// AddPayment appends a payment record. Payments are never updated or
// removed once written.
func (r *invoiceRepo) AddPayment(ctx context.Context, payment *domain.Payment) error {
	payment.ID = uuid.New()
	payment.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invoice_payments (id, tenant_id, invoice_id, amount, method, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		payment.ID, payment.TenantID, payment.InvoiceID, payment.Amount, payment.Method, payment.CreatedAt)
	if err != nil {
		return fmt.Errorf("invoiceRepo.AddPayment: %w", err)
	}
	return nil
}

func (r *invoiceRepo) ListPayments(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := r.db.SelectContext(ctx, &payments,
		`SELECT * FROM invoice_payments WHERE tenant_id = $1 AND invoice_id = $2 ORDER BY created_at`,
		tenantID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.ListPayments: %w", err)
	}
	return payments, nil
}

func (r *invoiceRepo) ListCreditNotesFor(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := r.db.SelectContext(ctx, &invoices,
		`SELECT * FROM invoices
		 WHERE tenant_id = $1 AND is_credit_note = TRUE AND credit_for_invoice_id = $2
		 ORDER BY created_at`,
		tenantID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.ListCreditNotesFor: %w", err)
	}
	return invoices, nil
}
