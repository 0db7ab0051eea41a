package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"fieldos/internal/billing"
	"fieldos/internal/domain"
	"fieldos/internal/port"
)

// counterColumns maps a counter key to its columns on sequence_counters.
var counterColumns = map[domain.CounterKey]struct {
	next   string
	prefix string
}{
	domain.CounterQuote:   {next: "next_quote", prefix: "prefix_quote"},
	domain.CounterJob:     {next: "next_job", prefix: "prefix_job"},
	domain.CounterInvoice: {next: "next_invoice", prefix: "prefix_invoice"},
}

// allocateNumber reads and advances the tenant's counter for key inside tx.
// The SELECT ... FOR UPDATE serializes concurrent allocators on the same
// tenant row; the formatted number is only observable once tx commits, so a
// rolled-back transaction consumes nothing.
func allocateNumber(ctx context.Context, tx *sqlx.Tx, tenantID uuid.UUID, key domain.CounterKey) (string, error) {
	cols, ok := counterColumns[key]
	if !ok {
		return "", fmt.Errorf("allocateNumber: unknown counter key %q", key)
	}

	var row struct {
		Next    int64  `db:"next"`
		Prefix  string `db:"prefix"`
		Padding int    `db:"padding"`
	}
	query := fmt.Sprintf(
		`SELECT %s AS next, %s AS prefix, padding FROM sequence_counters WHERE tenant_id = $1 FOR UPDATE`,
		cols.next, cols.prefix)
	if err := tx.GetContext(ctx, &row, query, tenantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("allocateNumber read: %w", err)
	}

	update := fmt.Sprintf(
		`UPDATE sequence_counters SET %s = %s + 1, updated_at = $1 WHERE tenant_id = $2`,
		cols.next, cols.next)
	if _, err := tx.ExecContext(ctx, update, time.Now().UTC(), tenantID); err != nil {
		return "", fmt.Errorf("allocateNumber advance: %w", err)
	}

	return billing.FormatNumber(row.Prefix, row.Next, row.Padding), nil
}

// createNumbered runs insert inside a transaction that also allocates a
// document number, so counter advance and entity creation commit or fail
// together. Serialization failures and deadlocks are retried with a fresh
// transaction up to maxRetries; past the budget the caller gets
// ErrSequenceConflict and no number has been consumed.
//
// insert must be free of side effects outside the transaction: it may be
// re-executed on conflict.
func createNumbered(
	ctx context.Context,
	db *sqlx.DB,
	maxRetries int,
	tenantID uuid.UUID,
	key domain.CounterKey,
	insert func(tx *sqlx.Tx, number string) error,
) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		number, err := tryCreateNumbered(ctx, db, tenantID, key, insert)
		if err == nil {
			return number, nil
		}
		if !isRetryableTxError(err) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("%w: %v", domain.ErrSequenceConflict, lastErr)
}

func tryCreateNumbered(
	ctx context.Context,
	db *sqlx.DB,
	tenantID uuid.UUID,
	key domain.CounterKey,
	insert func(tx *sqlx.Tx, number string) error,
) (string, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("createNumbered begin: %w", err)
	}

	number, err := allocateNumber(ctx, tx, tenantID, key)
	if err != nil {
		_ = tx.Rollback()
		return "", err
	}
	if err := insert(tx, number); err != nil {
		_ = tx.Rollback()
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("createNumbered commit: %w", err)
	}
	return number, nil
}

// isRetryableTxError reports whether err is a transient transaction
// conflict worth re-running: serialization failure (40001) or deadlock
// detected (40P01).
func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

type sequenceRepo struct {
	db *sqlx.DB
}

// NewSequenceRepo creates a new PostgreSQL-backed SequenceRepository.
func NewSequenceRepo(db *sqlx.DB) port.SequenceRepository {
	return &sequenceRepo{db: db}
}

func (r *sequenceRepo) Get(ctx context.Context, tenantID uuid.UUID) (*domain.SequenceCounters, error) {
	var counters domain.SequenceCounters
	err := r.db.GetContext(ctx, &counters,
		"SELECT * FROM sequence_counters WHERE tenant_id = $1", tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("sequenceRepo.Get: %w", err)
	}
	return &counters, nil
}

// UpdateSettings changes prefixes and padding only. Counter values advance
// exclusively inside allocation transactions.
func (r *sequenceRepo) UpdateSettings(ctx context.Context, counters *domain.SequenceCounters) error {
	counters.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE sequence_counters
		 SET prefix_quote = $1, prefix_job = $2, prefix_invoice = $3, padding = $4, updated_at = $5
		 WHERE tenant_id = $6`,
		counters.PrefixQuote, counters.PrefixJob, counters.PrefixInvoice,
		counters.Padding, counters.UpdatedAt, counters.TenantID)
	if err != nil {
		return fmt.Errorf("sequenceRepo.UpdateSettings: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
