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

type attachmentRepo struct {
	db *sqlx.DB
}

// NewAttachmentRepo creates a new PostgreSQL-backed AttachmentRepository.
func NewAttachmentRepo(db *sqlx.DB) port.AttachmentRepository {
	return &attachmentRepo{db: db}
}

func (r *attachmentRepo) Create(ctx context.Context, attachment *domain.Attachment) error {
	now := time.Now().UTC()
	attachment.CreatedAt = now
	attachment.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO job_attachments (
			id, tenant_id, job_id, uploaded_by, file_name, original_name,
			file_type, file_size, s3_bucket, s3_key, content_type, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		attachment.ID, attachment.TenantID, attachment.JobID, attachment.UploadedBy,
		attachment.FileName, attachment.OriginalName, attachment.FileType, attachment.FileSize,
		attachment.S3Bucket, attachment.S3Key, attachment.ContentType, attachment.Status,
		attachment.CreatedAt, attachment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("attachmentRepo.Create: %w", err)
	}
	return nil
}

func (r *attachmentRepo) GetByID(ctx context.Context, tenantID, attachmentID uuid.UUID) (*domain.Attachment, error) {
	var attachment domain.Attachment
	err := r.db.GetContext(ctx, &attachment,
		"SELECT * FROM job_attachments WHERE id = $1 AND tenant_id = $2", attachmentID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("attachmentRepo.GetByID: %w", err)
	}
	return &attachment, nil
}

func (r *attachmentRepo) ListByJob(ctx context.Context, tenantID, jobID uuid.UUID) ([]domain.Attachment, error) {
	var attachments []domain.Attachment
	err := r.db.SelectContext(ctx, &attachments,
		`SELECT * FROM job_attachments
		 WHERE tenant_id = $1 AND job_id = $2 AND status != $3
		 ORDER BY created_at`,
		tenantID, jobID, domain.AttachmentStatusDeleted)
	if err != nil {
		return nil, fmt.Errorf("attachmentRepo.ListByJob: %w", err)
	}
	return attachments, nil
}

func (r *attachmentRepo) UpdateStatus(ctx context.Context, tenantID, attachmentID uuid.UUID, status domain.AttachmentStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE job_attachments SET status = $1, updated_at = $2 WHERE id = $3 AND tenant_id = $4`,
		status, time.Now().UTC(), attachmentID, tenantID)
	if err != nil {
		return fmt.Errorf("attachmentRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *attachmentRepo) Delete(ctx context.Context, tenantID, attachmentID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM job_attachments WHERE id = $1 AND tenant_id = $2", attachmentID, tenantID)
	if err != nil {
		return fmt.Errorf("attachmentRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
