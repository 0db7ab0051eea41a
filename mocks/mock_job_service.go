package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fieldos/internal/domain"
	"fieldos/internal/service"
)

// MockJobService is a mock implementation of service.JobService.
type MockJobService struct {
	mock.Mock
}

func (m *MockJobService) Create(ctx context.Context, tenantID uuid.UUID, input service.CreateJobInput) (*domain.Job, error) {
	args := m.Called(ctx, tenantID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobService) CreateFromQuote(ctx context.Context, quote *domain.Quote, clientName string) (*domain.Job, error) {
	args := m.Called(ctx, quote, clientName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobService) GetByID(ctx context.Context, tenantID, jobID uuid.UUID) (*domain.Job, error) {
	args := m.Called(ctx, tenantID, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobService) List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.Job, int, error) {
	args := m.Called(ctx, tenantID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Job), args.Int(1), args.Error(2)
}

func (m *MockJobService) Update(ctx context.Context, tenantID, jobID uuid.UUID, input service.UpdateJobInput) (*domain.Job, error) {
	args := m.Called(ctx, tenantID, jobID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobService) UpdateStatus(ctx context.Context, tenantID, jobID uuid.UUID, status domain.JobStatus) (*domain.Job, error) {
	args := m.Called(ctx, tenantID, jobID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobService) AddVisit(ctx context.Context, tenantID, jobID uuid.UUID, input service.VisitInput) (*domain.Job, error) {
	args := m.Called(ctx, tenantID, jobID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobService) CompleteVisit(ctx context.Context, tenantID, jobID, visitID uuid.UUID) (*domain.Job, error) {
	args := m.Called(ctx, tenantID, jobID, visitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}
