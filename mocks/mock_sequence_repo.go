package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fieldos/internal/domain"
)

// MockSequenceRepo is a mock implementation of port.SequenceRepository.
type MockSequenceRepo struct {
	mock.Mock
}

func (m *MockSequenceRepo) Get(ctx context.Context, tenantID uuid.UUID) (*domain.SequenceCounters, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SequenceCounters), args.Error(1)
}

func (m *MockSequenceRepo) UpdateSettings(ctx context.Context, counters *domain.SequenceCounters) error {
	args := m.Called(ctx, counters)
	return args.Error(0)
}
