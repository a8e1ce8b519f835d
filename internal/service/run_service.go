package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"invoiceqc/internal/config"
	"invoiceqc/internal/domain"
	"invoiceqc/internal/port"
	"invoiceqc/internal/validator"
	"invoiceqc/internal/validator/invoice"
)

// alertTopErrors caps the error breakdown included in a QC alert mail.
const alertTopErrors = 5

// CreateRunInput is the DTO for creating a validation run from uploads.
type CreateRunInput struct {
	Source domain.RunSource
	Files  []*multipart.FileHeader
}

// RunService manages validation runs: creation from uploaded files, queries,
// and the extract-then-validate processing invoked by the queue worker.
type RunService interface {
	CreateRun(ctx context.Context, input CreateRunInput) (*domain.ValidationRun, error)
	GetRun(ctx context.Context, runID uuid.UUID) (*domain.ValidationRun, []domain.RunDocument, error)
	ListRuns(ctx context.Context, offset, limit int) ([]domain.ValidationRun, int, error)
	GetReport(ctx context.Context, runID uuid.UUID) (json.RawMessage, error)
	ProcessRun(ctx context.Context, run *domain.ValidationRun)
}

type runService struct {
	runRepo  port.RunRepository
	docRepo  port.RunDocumentRepository
	storage  port.ObjectStorage
	parser   port.DocumentParser
	engine   *validator.Engine
	sender   port.EmailSender
	s3cfg    *config.S3Config
	emailCfg *config.EmailConfig
	maxBatch int
}

// NewRunService creates a new RunService implementation.
func NewRunService(
	runRepo port.RunRepository,
	docRepo port.RunDocumentRepository,
	storage port.ObjectStorage,
	docParser port.DocumentParser,
	engine *validator.Engine,
	sender port.EmailSender,
	s3cfg *config.S3Config,
	emailCfg *config.EmailConfig,
	maxBatch int,
) RunService {
	return &runService{
		runRepo:  runRepo,
		docRepo:  docRepo,
		storage:  storage,
		parser:   docParser,
		engine:   engine,
		sender:   sender,
		s3cfg:    s3cfg,
		emailCfg: emailCfg,
		maxBatch: maxBatch,
	}
}

func (s *runService) CreateRun(ctx context.Context, input CreateRunInput) (*domain.ValidationRun, error) {
	if len(input.Files) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if s.maxBatch > 0 && len(input.Files) > s.maxBatch {
		return nil, domain.ErrBatchTooLarge
	}

	run := &domain.ValidationRun{
		ID:        uuid.New(),
		Source:    input.Source,
		Status:    domain.RunStatusQueued,
		FileCount: len(input.Files),
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("creating run: %w", err)
	}

	docs := make([]domain.RunDocument, 0, len(input.Files))
	for i, header := range input.Files {
		doc, err := s.uploadDocument(ctx, run.ID, i, header)
		if err != nil {
			s.failRun(ctx, run.ID, fmt.Sprintf("storing %s: %v", header.Filename, err))
			if isDomainError(err) {
				return nil, err
			}
			return nil, domain.ErrUploadFailed
		}
		docs = append(docs, *doc)
	}

	if err := s.docRepo.CreateBatch(ctx, docs); err != nil {
		s.failRun(ctx, run.ID, fmt.Sprintf("persisting documents: %v", err))
		return nil, fmt.Errorf("persisting run documents: %w", err)
	}

	log.Printf("runService.CreateRun: run %s queued with %d file(s)", run.ID, len(docs))
	return run, nil
}

// uploadDocument validates one uploaded file and stores it under
// runs/<run-id>/<doc-id><ext>.
func (s *runService) uploadDocument(ctx context.Context, runID uuid.UUID, position int, header *multipart.FileHeader) (*domain.RunDocument, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	maxBytes := s.s3cfg.MaxFileSizeMB * 1024 * 1024
	if header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}
	defer file.Close()

	// Magic-byte sniff so a renamed binary cannot slip through on its
	// extension alone. DetectContentType appends charset parameters for
	// text, so compare the bare media type.
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading file header: %w", err)
	}
	detected := http.DetectContentType(buf[:n])
	if i := strings.IndexByte(detected, ';'); i >= 0 {
		detected = strings.TrimSpace(detected[:i])
	}
	if _, ok := domain.AllowedContentTypes[detected]; !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking upload: %w", err)
	}

	docID := uuid.New()
	key := fmt.Sprintf("runs/%s/%s.%s", runID, docID, ext)
	contentType := domain.AllowedFileTypes[fileType]

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3cfg.Bucket,
		Key:         key,
		Body:        file,
		ContentType: contentType,
		Size:        header.Size,
	}); err != nil {
		log.Printf("runService.uploadDocument: S3 upload failed for %s: %v", header.Filename, err)
		return nil, domain.ErrUploadFailed
	}

	return &domain.RunDocument{
		ID:          docID,
		RunID:       runID,
		Position:    position,
		FileName:    header.Filename,
		ContentType: contentType,
		SizeBytes:   header.Size,
		StorageKey:  key,
	}, nil
}

func (s *runService) GetRun(ctx context.Context, runID uuid.UUID) (*domain.ValidationRun, []domain.RunDocument, error) {
	run, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return nil, nil, err
	}
	docs, err := s.docRepo.ListByRun(ctx, runID)
	if err != nil {
		return nil, nil, err
	}
	return run, docs, nil
}

func (s *runService) ListRuns(ctx context.Context, offset, limit int) ([]domain.ValidationRun, int, error) {
	return s.runRepo.List(ctx, offset, limit)
}

func (s *runService) GetReport(ctx context.Context, runID uuid.UUID) (json.RawMessage, error) {
	run, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.Status != domain.RunStatusCompleted {
		return nil, domain.ErrRunNotCompleted
	}
	return run.Report, nil
}

// ProcessRun downloads and extracts every document of a claimed run in
// upload order, executes the engine over the assembled batch, and persists
// per-document results plus the full report. A document whose extraction
// fails keeps its position and surfaces as an unparseable record; only
// infrastructure failures fail the whole run.
func (s *runService) ProcessRun(ctx context.Context, run *domain.ValidationRun) {
	docs, err := s.docRepo.ListByRun(ctx, run.ID)
	if err != nil {
		s.failRun(ctx, run.ID, fmt.Sprintf("listing documents: %v", err))
		return
	}

	batch := make([]invoiceBatchEntry, len(docs))
	for i := range docs {
		batch[i] = s.extractDocument(ctx, &docs[i])
	}

	invoices := make([]invoice.Invoice, len(batch))
	errs := make([]error, len(batch))
	for i := range batch {
		invoices[i] = batch[i].invoice
		errs[i] = batch[i].err
	}

	report := s.engine.RunPartial(invoices, errs)

	for i := range docs {
		res := report.Results[i]
		docs[i].InvoiceRef = res.InvoiceRef
		docs[i].IsValid = res.IsValid
		docs[i].ViolationCount = len(res.Violations)
		if data, err := json.Marshal(res.Violations); err == nil {
			docs[i].Violations = data
		}
		if batch[i].err == nil {
			docs[i].ParserProvider = batch[i].provider
			if data, err := json.Marshal(batch[i].invoice); err == nil {
				docs[i].Invoice = data
			}
		}
		if err := s.docRepo.UpdateResult(ctx, &docs[i]); err != nil {
			log.Printf("runService.ProcessRun: saving result for document %s: %v", docs[i].ID, err)
		}
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		s.failRun(ctx, run.ID, fmt.Sprintf("encoding report: %v", err))
		return
	}

	run.TotalCount = report.Summary.TotalInvoices
	run.ValidCount = report.Summary.ValidCount
	run.InvalidCount = report.Summary.InvalidCount
	run.Report = reportJSON
	if err := s.runRepo.Complete(ctx, run); err != nil {
		s.failRun(ctx, run.ID, fmt.Sprintf("completing run: %v", err))
		return
	}

	log.Printf("runService.ProcessRun: run %s completed, %d/%d invoices valid",
		run.ID, run.ValidCount, run.TotalCount)

	s.sendAlert(ctx, run, report)
}

// invoiceBatchEntry carries one document's extraction outcome through run
// processing.
type invoiceBatchEntry struct {
	invoice  invoice.Invoice
	provider string
	err      error
}

func (s *runService) extractDocument(ctx context.Context, doc *domain.RunDocument) invoiceBatchEntry {
	fileBytes, err := s.storage.Download(ctx, s.s3cfg.Bucket, doc.StorageKey)
	if err != nil {
		log.Printf("runService.extractDocument: downloading %s: %v", doc.StorageKey, err)
		return invoiceBatchEntry{err: fmt.Errorf("downloading document: %w", err)}
	}

	output, err := s.parser.Parse(ctx, port.ParseInput{
		FileBytes:   fileBytes,
		ContentType: doc.ContentType,
		FileName:    doc.FileName,
	})
	if err != nil {
		log.Printf("runService.extractDocument: extracting %s: %v", doc.FileName, err)
		return invoiceBatchEntry{err: fmt.Errorf("extraction failed: %w", err)}
	}

	inv := output.Invoice
	inv.SourceFile = doc.FileName
	return invoiceBatchEntry{invoice: inv, provider: output.Provider}
}

// sendAlert mails the QC breakdown for runs with invalid invoices. Delivery
// problems are logged, never propagated.
func (s *runService) sendAlert(ctx context.Context, run *domain.ValidationRun, report validator.Report) {
	if s.sender == nil || run.InvalidCount == 0 || len(s.emailCfg.AlertRecipients) == 0 {
		return
	}

	topErrors := make([]domain.RuleFrequency, 0, alertTopErrors)
	for _, entry := range report.Summary.TopErrors(alertTopErrors) {
		topErrors = append(topErrors, domain.RuleFrequency{RuleID: entry.RuleID, Count: entry.Count})
	}

	alert := port.QCAlert{Run: *run, TopErrors: topErrors}
	if err := s.sender.SendQCAlert(ctx, s.emailCfg.AlertRecipients, alert); err != nil {
		log.Printf("runService.sendAlert: sending QC alert for run %s: %v", run.ID, err)
	}
}

func (s *runService) failRun(ctx context.Context, runID uuid.UUID, msg string) {
	log.Printf("runService: run %s failed: %s", runID, msg)
	if err := s.runRepo.UpdateStatus(ctx, runID, domain.RunStatusFailed, msg); err != nil {
		log.Printf("runService.failRun: marking run %s failed: %v", runID, err)
	}
}

func isDomainError(err error) bool {
	switch err {
	case domain.ErrUnsupportedFileType, domain.ErrFileTooLarge, domain.ErrUploadFailed:
		return true
	}
	return false
}
