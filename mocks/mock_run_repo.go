package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"invoiceqc/internal/domain"
)

// MockRunRepo is a mock implementation of port.RunRepository.
type MockRunRepo struct {
	mock.Mock
}

func (m *MockRunRepo) Create(ctx context.Context, run *domain.ValidationRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepo) GetByID(ctx context.Context, runID uuid.UUID) (*domain.ValidationRun, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ValidationRun), args.Error(1)
}

func (m *MockRunRepo) List(ctx context.Context, offset, limit int) ([]domain.ValidationRun, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ValidationRun), args.Int(1), args.Error(2)
}

func (m *MockRunRepo) ClaimNextQueued(ctx context.Context) (*domain.ValidationRun, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ValidationRun), args.Error(1)
}

func (m *MockRunRepo) UpdateStatus(ctx context.Context, runID uuid.UUID, status domain.RunStatus, runErr string) error {
	args := m.Called(ctx, runID, status, runErr)
	return args.Error(0)
}

func (m *MockRunRepo) Complete(ctx context.Context, run *domain.ValidationRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}
