package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invoiceqc/internal/domain"
)

// MockStatsService is a mock implementation of service.StatsService.
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) GetStats(ctx context.Context) (*domain.RunStats, []domain.RuleFrequency, error) {
	args := m.Called(ctx)
	var stats *domain.RunStats
	if args.Get(0) != nil {
		stats = args.Get(0).(*domain.RunStats)
	}
	var freqs []domain.RuleFrequency
	if args.Get(1) != nil {
		freqs = args.Get(1).([]domain.RuleFrequency)
	}
	return stats, freqs, args.Error(2)
}
