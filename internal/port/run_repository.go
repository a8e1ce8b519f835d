package port

import (
	"context"

	"github.com/google/uuid"

	"invoiceqc/internal/domain"
)

// RunRepository defines the contract for validation run persistence.
type RunRepository interface {
	Create(ctx context.Context, run *domain.ValidationRun) error
	GetByID(ctx context.Context, runID uuid.UUID) (*domain.ValidationRun, error)
	List(ctx context.Context, offset, limit int) ([]domain.ValidationRun, int, error)
	// ClaimNextQueued atomically moves the oldest queued run to processing
	// and returns it, or domain.ErrNotFound when the queue is empty.
	ClaimNextQueued(ctx context.Context) (*domain.ValidationRun, error)
	UpdateStatus(ctx context.Context, runID uuid.UUID, status domain.RunStatus, runErr string) error
	// Complete stores the report and final counters in one update.
	Complete(ctx context.Context, run *domain.ValidationRun) error
}

// RunDocumentRepository defines the contract for per-document persistence
// within a run.
type RunDocumentRepository interface {
	CreateBatch(ctx context.Context, docs []domain.RunDocument) error
	ListByRun(ctx context.Context, runID uuid.UUID) ([]domain.RunDocument, error)
	UpdateResult(ctx context.Context, doc *domain.RunDocument) error
}
