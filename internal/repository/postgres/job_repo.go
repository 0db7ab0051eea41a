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

type jobRepo struct {
	db           *sqlx.DB
	allocRetries int
}

// NewJobRepo creates a new PostgreSQL-backed JobRepository.
func NewJobRepo(db *sqlx.DB, allocRetries int) port.JobRepository {
	return &jobRepo{db: db, allocRetries: allocRetries}
}

func (r *jobRepo) Create(ctx context.Context, job *domain.Job) error {
	job.ID = uuid.New()
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	number, err := createNumbered(ctx, r.db, r.allocRetries, job.TenantID, domain.CounterJob,
		func(tx *sqlx.Tx, number string) error {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO jobs (
					id, tenant_id, client_id, quote_id, property_id, property_snapshot,
					title, instructions, job_number, status, line_items, assignees, visits,
					started_at, completed_at, created_at, updated_at
				) VALUES (
					$1, $2, $3, $4, $5, $6,
					$7, $8, $9, $10, $11, $12, $13,
					$14, $15, $16, $17
				)`,
				job.ID, job.TenantID, job.ClientID, job.QuoteID, job.PropertyID, job.PropertySnapshot,
				job.Title, job.Instructions, number, job.Status, job.LineItems, job.Assignees, job.Visits,
				job.StartedAt, job.CompletedAt, job.CreatedAt, job.UpdatedAt)
			if err != nil {
				return fmt.Errorf("jobRepo.Create insert: %w", err)
			}
			return nil
		})
	if err != nil {
		return err
	}

	job.JobNumber = number
	return nil
}

func (r *jobRepo) GetByID(ctx context.Context, tenantID, jobID uuid.UUID) (*domain.Job, error) {
	var job domain.Job
	err := r.db.GetContext(ctx, &job,
		"SELECT * FROM jobs WHERE id = $1 AND tenant_id = $2", jobID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("jobRepo.GetByID: %w", err)
	}
	return &job, nil
}

func (r *jobRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.Job, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM jobs WHERE tenant_id = $1", tenantID)
	if err != nil {
		return nil, 0, fmt.Errorf("jobRepo.ListByTenant count: %w", err)
	}

	var jobs []domain.Job
	err = r.db.SelectContext(ctx, &jobs,
		`SELECT * FROM jobs WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		tenantID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("jobRepo.ListByTenant: %w", err)
	}
	return jobs, total, nil
}

func (r *jobRepo) Update(ctx context.Context, job *domain.Job) error {
	job.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET
			client_id = $1, quote_id = $2, property_id = $3, property_snapshot = $4,
			title = $5, instructions = $6, status = $7, line_items = $8,
			assignees = $9, visits = $10, started_at = $11, completed_at = $12,
			updated_at = $13
		 WHERE id = $14 AND tenant_id = $15`,
		job.ClientID, job.QuoteID, job.PropertyID, job.PropertySnapshot,
		job.Title, job.Instructions, job.Status, job.LineItems,
		job.Assignees, job.Visits, job.StartedAt, job.CompletedAt,
		job.UpdatedAt,
		job.ID, job.TenantID)
	if err != nil {
		return fmt.Errorf("jobRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}
