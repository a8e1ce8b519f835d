package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"invoiceqc/internal/domain"
	"invoiceqc/internal/port"
)

type statsRepo struct {
	db *sqlx.DB
}

// NewStatsRepo creates a new PostgreSQL-backed StatsRepository.
func NewStatsRepo(db *sqlx.DB) port.StatsRepository {
	return &statsRepo{db: db}
}

// Invoice totals come from the runs' own counters so they stay consistent
// with the stored reports; only completed runs contribute.
const runStatsQuery = `SELECT
	COUNT(*) AS total_runs,
	COUNT(CASE WHEN status = 'queued' THEN 1 END) AS queued_runs,
	COUNT(CASE WHEN status = 'processing' THEN 1 END) AS processing_runs,
	COUNT(CASE WHEN status = 'completed' THEN 1 END) AS completed_runs,
	COUNT(CASE WHEN status = 'failed' THEN 1 END) AS failed_runs,
	COALESCE(SUM(CASE WHEN status = 'completed' THEN total_count END), 0) AS total_invoices,
	COALESCE(SUM(CASE WHEN status = 'completed' THEN valid_count END), 0) AS valid_invoices,
	COALESCE(SUM(CASE WHEN status = 'completed' THEN invalid_count END), 0) AS invalid_invoices
FROM validation_runs`

// Each document counts once per rule no matter how many violations of that
// rule it carries, matching the report summary's error_frequency.
const ruleFrequencyQuery = `SELECT
	v->>'rule_id' AS rule_id,
	COUNT(DISTINCT d.id) AS count
FROM run_documents d
CROSS JOIN LATERAL jsonb_array_elements(d.violations) AS v
WHERE jsonb_typeof(d.violations) = 'array'
GROUP BY v->>'rule_id'
ORDER BY count DESC, rule_id ASC
LIMIT $1`

func (r *statsRepo) GetRunStats(ctx context.Context) (*domain.RunStats, error) {
	var stats domain.RunStats
	if err := r.db.GetContext(ctx, &stats, runStatsQuery); err != nil {
		return nil, fmt.Errorf("statsRepo.GetRunStats: %w", err)
	}
	return &stats, nil
}

func (r *statsRepo) TopRuleFrequencies(ctx context.Context, limit int) ([]domain.RuleFrequency, error) {
	var freqs []domain.RuleFrequency
	if err := r.db.SelectContext(ctx, &freqs, ruleFrequencyQuery, limit); err != nil {
		return nil, fmt.Errorf("statsRepo.TopRuleFrequencies: %w", err)
	}
	return freqs, nil
}
