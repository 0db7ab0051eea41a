package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"fieldos/internal/domain"
	"fieldos/internal/service"
	"fieldos/mocks"
)

func setupTenantService() (service.TenantService, *mocks.MockTenantRepo, *mocks.MockSequenceRepo) {
	repo := new(mocks.MockTenantRepo)
	seqRepo := new(mocks.MockSequenceRepo)
	svc := service.NewTenantService(repo, seqRepo)
	return svc, repo, seqRepo
}

func TestTenantService_Create_DefaultsToActive(t *testing.T) {
	svc, repo, _ := setupTenantService()

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Tenant")).Return(nil)

	tenant, err := svc.Create(context.Background(), service.CreateTenantInput{
		Name: "Green Lawns",
		Slug: "green-lawns",
	})

	assert.NoError(t, err)
	assert.True(t, tenant.IsActive)
	assert.Equal(t, "green-lawns", tenant.Slug)
}

// --- Sequence settings ---

func TestTenantService_UpdateSequenceSettings_ChangesPrefixes(t *testing.T) {
	svc, _, seqRepo := setupTenantService()

	tenantID := uuid.New()
	counters := &domain.SequenceCounters{
		TenantID:      tenantID,
		NextQuote:     12,
		PrefixQuote:   "QU",
		NextJob:       4,
		PrefixJob:     "JOB",
		NextInvoice:   9,
		PrefixInvoice: "INV",
		Padding:       4,
	}
	seqRepo.On("Get", mock.Anything, tenantID).Return(counters, nil)
	seqRepo.On("UpdateSettings", mock.Anything, counters).Return(nil)

	prefix := "EST"
	padding := 6
	updated, err := svc.UpdateSequenceSettings(context.Background(), tenantID, service.SequenceSettingsInput{
		PrefixQuote: &prefix,
		Padding:     &padding,
	})

	assert.NoError(t, err)
	assert.Equal(t, "EST", updated.PrefixQuote)
	assert.Equal(t, 6, updated.Padding)
	// Counter positions are untouched by settings updates.
	assert.Equal(t, int64(12), updated.NextQuote)
	assert.Equal(t, int64(9), updated.NextInvoice)
	seqRepo.AssertExpectations(t)
}

func TestTenantService_UpdateSequenceSettings_PaddingOutOfRange(t *testing.T) {
	svc, _, seqRepo := setupTenantService()

	tenantID := uuid.New()
	seqRepo.On("Get", mock.Anything, tenantID).
		Return(&domain.SequenceCounters{TenantID: tenantID, Padding: 4}, nil)

	padding := 11
	updated, err := svc.UpdateSequenceSettings(context.Background(), tenantID, service.SequenceSettingsInput{
		Padding: &padding,
	})

	assert.Nil(t, updated)
	assert.ErrorIs(t, err, domain.ErrValidation)
	seqRepo.AssertNotCalled(t, "UpdateSettings", mock.Anything, mock.Anything)
}
