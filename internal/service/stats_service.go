package service

import (
	"context"

	"invoiceqc/internal/domain"
	"invoiceqc/internal/port"
)

// statsTopErrors caps the rule breakdown returned by the stats endpoint.
const statsTopErrors = 10

// StatsService provides aggregate statistics across stored runs.
type StatsService interface {
	GetStats(ctx context.Context) (*domain.RunStats, []domain.RuleFrequency, error)
}

type statsService struct {
	statsRepo port.StatsRepository
}

// NewStatsService creates a new StatsService implementation.
func NewStatsService(statsRepo port.StatsRepository) StatsService {
	return &statsService{statsRepo: statsRepo}
}

func (s *statsService) GetStats(ctx context.Context) (*domain.RunStats, []domain.RuleFrequency, error) {
	stats, err := s.statsRepo.GetRunStats(ctx)
	if err != nil {
		return nil, nil, err
	}
	freqs, err := s.statsRepo.TopRuleFrequencies(ctx, statsTopErrors)
	if err != nil {
		return nil, nil, err
	}
	return stats, freqs, nil
}
