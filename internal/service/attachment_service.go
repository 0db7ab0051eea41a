package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"fieldos/internal/config"
	"fieldos/internal/domain"
	"fieldos/internal/port"
)

// AttachmentUploadInput is the DTO for job attachment uploads.
type AttachmentUploadInput struct {
	TenantID   uuid.UUID
	JobID      uuid.UUID
	UploadedBy uuid.UUID
	File       multipart.File
	Header     *multipart.FileHeader
}

// AttachmentService defines the job attachment contract: site photos and
// signed paperwork uploaded against a job.
type AttachmentService interface {
	Upload(ctx context.Context, input AttachmentUploadInput) (*domain.Attachment, error)
	ListByJob(ctx context.Context, tenantID, jobID uuid.UUID) ([]domain.Attachment, error)
	GetDownloadURL(ctx context.Context, tenantID, attachmentID uuid.UUID) (string, error)
	Delete(ctx context.Context, tenantID, attachmentID uuid.UUID) error
}

type attachmentService struct {
	attachmentRepo port.AttachmentRepository
	jobRepo        port.JobRepository
	storage        port.ObjectStorage
	cfg            *config.S3Config
}

// NewAttachmentService creates a new AttachmentService implementation.
func NewAttachmentService(
	attachmentRepo port.AttachmentRepository,
	jobRepo port.JobRepository,
	storage port.ObjectStorage,
	cfg *config.S3Config,
) AttachmentService {
	return &attachmentService{
		attachmentRepo: attachmentRepo,
		jobRepo:        jobRepo,
		storage:        storage,
		cfg:            cfg,
	}
}

func (s *attachmentService) Upload(ctx context.Context, input AttachmentUploadInput) (*domain.Attachment, error) {
	// The job must exist under this tenant before anything is written.
	if _, err := s.jobRepo.GetByID(ctx, input.TenantID, input.JobID); err != nil {
		return nil, err
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Magic-byte check so a renamed executable can't sneak in as a photo.
	buf := make([]byte, 512)
	n, err := input.File.Read(buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading file header: %w", err)
	}
	detectedType := http.DetectContentType(buf[:n])
	if _, validContent := domain.AllowedContentTypes[detectedType]; !validContent {
		return nil, domain.ErrUnsupportedFileType
	}

	if _, err := input.File.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking file: %w", err)
	}

	attachmentID := uuid.New()
	s3Key := fmt.Sprintf("tenants/%s/jobs/%s/%s/%s", input.TenantID, input.JobID, attachmentID, input.Header.Filename)
	contentType := domain.AllowedFileTypes[fileType]

	attachment := &domain.Attachment{
		ID:           attachmentID,
		TenantID:     input.TenantID,
		JobID:        input.JobID,
		UploadedBy:   input.UploadedBy,
		FileName:     attachmentID.String() + "." + ext,
		OriginalName: input.Header.Filename,
		FileType:     fileType,
		FileSize:     input.Header.Size,
		S3Bucket:     s.cfg.Bucket,
		S3Key:        s3Key,
		ContentType:  contentType,
		Status:       domain.AttachmentStatusPending,
	}

	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		return nil, fmt.Errorf("creating attachment metadata: %w", err)
	}

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         s3Key,
		Body:        input.File,
		ContentType: contentType,
		Size:        input.Header.Size,
	})
	if err != nil {
		log.Printf("attachmentService.Upload: S3 upload failed for %s: %v", attachment.ID, err)
		_ = s.attachmentRepo.UpdateStatus(ctx, attachment.TenantID, attachment.ID, domain.AttachmentStatusFailed)
		return nil, domain.ErrUploadFailed
	}

	if err := s.attachmentRepo.UpdateStatus(ctx, attachment.TenantID, attachment.ID, domain.AttachmentStatusUploaded); err != nil {
		return nil, fmt.Errorf("updating attachment status: %w", err)
	}
	attachment.Status = domain.AttachmentStatusUploaded

	return attachment, nil
}

func (s *attachmentService) ListByJob(ctx context.Context, tenantID, jobID uuid.UUID) ([]domain.Attachment, error) {
	return s.attachmentRepo.ListByJob(ctx, tenantID, jobID)
}

func (s *attachmentService) GetDownloadURL(ctx context.Context, tenantID, attachmentID uuid.UUID) (string, error) {
	attachment, err := s.attachmentRepo.GetByID(ctx, tenantID, attachmentID)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, attachment.S3Bucket, attachment.S3Key, s.cfg.PresignExpiry)
}

func (s *attachmentService) Delete(ctx context.Context, tenantID, attachmentID uuid.UUID) error {
	attachment, err := s.attachmentRepo.GetByID(ctx, tenantID, attachmentID)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, attachment.S3Bucket, attachment.S3Key); err != nil {
		log.Printf("attachmentService.Delete: failed to delete from S3: %v", err)
		return fmt.Errorf("deleting from storage: %w", err)
	}

	return s.attachmentRepo.UpdateStatus(ctx, tenantID, attachmentID, domain.AttachmentStatusDeleted)
}
