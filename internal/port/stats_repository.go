package port

import (
	"context"

	"invoiceqc/internal/domain"
)

// StatsRepository provides aggregate statistics queries across stored runs.
type StatsRepository interface {
	GetRunStats(ctx context.Context) (*domain.RunStats, error)
	// TopRuleFrequencies returns rule IDs ranked by the number of invoices
	// that violated them across all completed runs, count descending with
	// rule_id as tie-breaker.
	TopRuleFrequencies(ctx context.Context, limit int) ([]domain.RuleFrequency, error)
}
