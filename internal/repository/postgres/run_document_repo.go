package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"invoiceqc/internal/domain"
	"invoiceqc/internal/port"
)

type runDocumentRepo struct {
	db *sqlx.DB
}

// NewRunDocumentRepo creates a new PostgreSQL-backed RunDocumentRepository.
func NewRunDocumentRepo(db *sqlx.DB) port.RunDocumentRepository {
	return &runDocumentRepo{db: db}
}

func (r *runDocumentRepo) CreateBatch(ctx context.Context, docs []domain.RunDocument) error {
	if len(docs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	valueStrings := make([]string, 0, len(docs))
	valueArgs := make([]interface{}, 0, len(docs)*15)

	for i := range docs {
		docs[i].CreatedAt = now
		docs[i].UpdatedAt = now
		base := i * 15
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8,
			base+9, base+10, base+11, base+12, base+13, base+14, base+15))
		valueArgs = append(valueArgs,
			docs[i].ID, docs[i].RunID, docs[i].Position, docs[i].FileName,
			docs[i].ContentType, docs[i].SizeBytes, docs[i].StorageKey,
			docs[i].ParserProvider, docs[i].Invoice, docs[i].InvoiceRef,
			docs[i].IsValid, docs[i].ViolationCount, docs[i].Violations,
			docs[i].CreatedAt, docs[i].UpdatedAt)
	}

	query := fmt.Sprintf(
		`INSERT INTO run_documents (
			id, run_id, position, file_name,
			content_type, size_bytes, storage_key,
			parser_provider, invoice, invoice_ref,
			is_valid, violation_count, violations,
			created_at, updated_at
		) VALUES %s`,
		strings.Join(valueStrings, ", "))

	_, err := r.db.ExecContext(ctx, query, valueArgs...)
	if err != nil {
		return fmt.Errorf("runDocumentRepo.CreateBatch: %w", err)
	}
	return nil
}

func (r *runDocumentRepo) ListByRun(ctx context.Context, runID uuid.UUID) ([]domain.RunDocument, error) {
	var docs []domain.RunDocument
	err := r.db.SelectContext(ctx, &docs,
		"SELECT * FROM run_documents WHERE run_id = $1 ORDER BY position",
		runID)
	if err != nil {
		return nil, fmt.Errorf("runDocumentRepo.ListByRun: %w", err)
	}
	return docs, nil
}

func (r *runDocumentRepo) UpdateResult(ctx context.Context, doc *domain.RunDocument) error {
	doc.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE run_documents SET
			parser_provider = $1, invoice = $2, invoice_ref = $3,
			is_valid = $4, violation_count = $5, violations = $6,
			updated_at = $7
		 WHERE id = $8`,
		doc.ParserProvider, doc.Invoice, doc.InvoiceRef,
		doc.IsValid, doc.ViolationCount, doc.Violations,
		doc.UpdatedAt, doc.ID)
	if err != nil {
		return fmt.Errorf("runDocumentRepo.UpdateResult: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
