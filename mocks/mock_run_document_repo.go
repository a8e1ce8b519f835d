package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"invoiceqc/internal/domain"
)

// MockRunDocumentRepo is a mock implementation of port.RunDocumentRepository.
type MockRunDocumentRepo struct {
	mock.Mock
}

func (m *MockRunDocumentRepo) CreateBatch(ctx context.Context, docs []domain.RunDocument) error {
	args := m.Called(ctx, docs)
	return args.Error(0)
}

func (m *MockRunDocumentRepo) ListByRun(ctx context.Context, runID uuid.UUID) ([]domain.RunDocument, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RunDocument), args.Error(1)
}

func (m *MockRunDocumentRepo) UpdateResult(ctx context.Context, doc *domain.RunDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}
