package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"fieldos/internal/domain"
	"fieldos/internal/port"
)

// CreateTenantInput is the DTO for creating a tenant.
type CreateTenantInput struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

// UpdateTenantInput is the DTO for updating a tenant.
type UpdateTenantInput struct {
	Name     *string `json:"name"`
	Slug     *string `json:"slug"`
	IsActive *bool   `json:"is_active"`
}

// SequenceSettingsInput is the DTO for updating a tenant's number series.
// Prefixes and padding apply to future allocations only; numbers already
// issued never change.
type SequenceSettingsInput struct {
	PrefixQuote   *string `json:"prefix_quote"`
	PrefixJob     *string `json:"prefix_job"`
	PrefixInvoice *string `json:"prefix_invoice"`
	Padding       *int    `json:"padding"`
}

// TenantService defines the tenant management contract.
type TenantService interface {
	Create(ctx context.Context, input CreateTenantInput) (*domain.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
	List(ctx context.Context, offset, limit int) ([]domain.Tenant, int, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateTenantInput) (*domain.Tenant, error)
	Delete(ctx context.Context, id uuid.UUID) error

	GetSequenceSettings(ctx context.Context, tenantID uuid.UUID) (*domain.SequenceCounters, error)
	UpdateSequenceSettings(ctx context.Context, tenantID uuid.UUID, input SequenceSettingsInput) (*domain.SequenceCounters, error)
}

type tenantService struct {
	repo    port.TenantRepository
	seqRepo port.SequenceRepository
}

// NewTenantService creates a new TenantService implementation.
func NewTenantService(repo port.TenantRepository, seqRepo port.SequenceRepository) TenantService {
	return &tenantService{repo: repo, seqRepo: seqRepo}
}

func (s *tenantService) Create(ctx context.Context, input CreateTenantInput) (*domain.Tenant, error) {
	tenant := &domain.Tenant{
		Name:     input.Name,
		Slug:     input.Slug,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *tenantService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *tenantService) List(ctx context.Context, offset, limit int) ([]domain.Tenant, int, error) {
	return s.repo.List(ctx, offset, limit)
}

func (s *tenantService) Update(ctx context.Context, id uuid.UUID, input UpdateTenantInput) (*domain.Tenant, error) {
	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		tenant.Name = *input.Name
	}
	if input.Slug != nil {
		tenant.Slug = *input.Slug
	}
	if input.IsActive != nil {
		tenant.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *tenantService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *tenantService) GetSequenceSettings(ctx context.Context, tenantID uuid.UUID) (*domain.SequenceCounters, error) {
	return s.seqRepo.Get(ctx, tenantID)
}

func (s *tenantService) UpdateSequenceSettings(ctx context.Context, tenantID uuid.UUID, input SequenceSettingsInput) (*domain.SequenceCounters, error) {
	counters, err := s.seqRepo.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if input.PrefixQuote != nil {
		counters.PrefixQuote = *input.PrefixQuote
	}
	if input.PrefixJob != nil {
		counters.PrefixJob = *input.PrefixJob
	}
	if input.PrefixInvoice != nil {
		counters.PrefixInvoice = *input.PrefixInvoice
	}
	if input.Padding != nil {
		if *input.Padding < 0 || *input.Padding > 10 {
			return nil, fmt.Errorf("%w: padding must be between 0 and 10", domain.ErrValidation)
		}
		counters.Padding = *input.Padding
	}

	if err := s.seqRepo.UpdateSettings(ctx, counters); err != nil {
		return nil, err
	}
	return counters, nil
}
