package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"invoiceqc/internal/domain"
	"invoiceqc/internal/port"
)

type runRepo struct {
	db *sqlx.DB
}

// NewRunRepo creates a new PostgreSQL-backed RunRepository.
func NewRunRepo(db *sqlx.DB) port.RunRepository {
	return &runRepo{db: db}
}

func (r *runRepo) Create(ctx context.Context, run *domain.ValidationRun) error {
	now := time.Now().UTC()
	run.CreatedAt = now
	run.UpdatedAt = now

	query := `INSERT INTO validation_runs (
		id, source, status, file_count,
		total_count, valid_count, invalid_count,
		report, error, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4,
		$5, $6, $7,
		$8, $9, $10, $11
	)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.Source, run.Status, run.FileCount,
		run.TotalCount, run.ValidCount, run.InvalidCount,
		run.Report, run.Error, run.CreatedAt, run.UpdatedAt)
	if err != nil {
		return fmt.Errorf("runRepo.Create: %w", err)
	}
	return nil
}

func (r *runRepo) GetByID(ctx context.Context, runID uuid.UUID) (*domain.ValidationRun, error) {
	var run domain.ValidationRun
	err := r.db.GetContext(ctx, &run,
		"SELECT * FROM validation_runs WHERE id = $1", runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("runRepo.GetByID: %w", err)
	}
	return &run, nil
}

func (r *runRepo) List(ctx context.Context, offset, limit int) ([]domain.ValidationRun, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM validation_runs")
	if err != nil {
		return nil, 0, fmt.Errorf("runRepo.List count: %w", err)
	}

	var runs []domain.ValidationRun
	err = r.db.SelectContext(ctx, &runs,
		`SELECT * FROM validation_runs
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("runRepo.List: %w", err)
	}
	return runs, total, nil
}

// ClaimNextQueued picks the oldest queued run and flips it to processing in a
// single statement. SKIP LOCKED keeps concurrent workers from claiming the
// same run or blocking on each other.
func (r *runRepo) ClaimNextQueued(ctx context.Context) (*domain.ValidationRun, error) {
	var run domain.ValidationRun
	err := r.db.GetContext(ctx, &run,
		`UPDATE validation_runs SET status = $1, updated_at = $2
		 WHERE id = (
			SELECT id FROM validation_runs WHERE status = $3
			ORDER BY created_at ASC LIMIT 1
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING *`,
		domain.RunStatusProcessing, time.Now().UTC(), domain.RunStatusQueued)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("runRepo.ClaimNextQueued: %w", err)
	}
	return &run, nil
}

func (r *runRepo) UpdateStatus(ctx context.Context, runID uuid.UUID, status domain.RunStatus, runErr string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE validation_runs SET status = $1, error = $2, updated_at = $3
		 WHERE id = $4`,
		status, runErr, time.Now().UTC(), runID)
	if err != nil {
		return fmt.Errorf("runRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *runRepo) Complete(ctx context.Context, run *domain.ValidationRun) error {
	run.Status = domain.RunStatusCompleted
	run.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE validation_runs SET
			status = $1, total_count = $2, valid_count = $3,
			invalid_count = $4, report = $5, error = '', updated_at = $6
		 WHERE id = $7`,
		run.Status, run.TotalCount, run.ValidCount,
		run.InvalidCount, run.Report, run.UpdatedAt,
		run.ID)
	if err != nil {
		return fmt.Errorf("runRepo.Complete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
