package mocks

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"invoiceqc/internal/domain"
	"invoiceqc/internal/service"
)

// MockRunService is a mock implementation of service.RunService.
type MockRunService struct {
	mock.Mock
}

func (m *MockRunService) CreateRun(ctx context.Context, input service.CreateRunInput) (*domain.ValidationRun, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ValidationRun), args.Error(1)
}

func (m *MockRunService) GetRun(ctx context.Context, runID uuid.UUID) (*domain.ValidationRun, []domain.RunDocument, error) {
	args := m.Called(ctx, runID)
	var run *domain.ValidationRun
	if args.Get(0) != nil {
		run = args.Get(0).(*domain.ValidationRun)
	}
	var docs []domain.RunDocument
	if args.Get(1) != nil {
		docs = args.Get(1).([]domain.RunDocument)
	}
	return run, docs, args.Error(2)
}

func (m *MockRunService) ListRuns(ctx context.Context, offset, limit int) ([]domain.ValidationRun, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ValidationRun), args.Int(1), args.Error(2)
}

func (m *MockRunService) GetReport(ctx context.Context, runID uuid.UUID) (json.RawMessage, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockRunService) ProcessRun(ctx context.Context, run *domain.ValidationRun) {
	m.Called(ctx, run)
}
