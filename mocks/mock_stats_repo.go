package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invoiceqc/internal/domain"
)

// MockStatsRepo is a mock implementation of port.StatsRepository.
type MockStatsRepo struct {
	mock.Mock
}

func (m *MockStatsRepo) GetRunStats(ctx context.Context) (*domain.RunStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RunStats), args.Error(1)
}

func (m *MockStatsRepo) TopRuleFrequencies(ctx context.Context, limit int) ([]domain.RuleFrequency, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RuleFrequency), args.Error(1)
}
