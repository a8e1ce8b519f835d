package handler

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"invoiceqc/internal/domain"
	"invoiceqc/internal/export"
	"invoiceqc/internal/service"
)

// RunHandler handles validation run endpoints.
type RunHandler struct {
	runService service.RunService
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(runService service.RunService) *RunHandler {
	return &RunHandler{runService: runService}
}

// Create handles POST /api/v1/runs
// @Summary Create a validation run
// @Description Upload one or more invoice documents (PDF, TXT, JPG, PNG) and queue them for extraction and validation
// @Tags runs
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Invoice documents to validate"
// @Success 202 {object} Response{data=domain.ValidationRun} "Run accepted for processing"
// @Failure 400 {object} ErrorResponseBody "Missing files or unsupported type"
// @Failure 413 {object} ErrorResponseBody "File or batch too large"
// @Failure 500 {object} ErrorResponseBody "Upload failed"
// @Router /runs [post]
func (h *RunHandler) Create(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FORM", "could not parse multipart form")
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		RespondError(c, http.StatusBadRequest, "MISSING_FILES", "at least one file is required in the 'files' field")
		return
	}

	run, err := h.runService.CreateRun(c.Request.Context(), service.CreateRunInput{
		Source: domain.RunSourceAPI,
		Files:  files,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondAccepted(c, run)
}

// List handles GET /api/v1/runs
// @Summary List validation runs
// @Description List validation runs, newest first, with pagination
// @Tags runs
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.ValidationRun,meta=PagMeta} "List of runs"
// @Router /runs [get]
func (h *RunHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	runs, total, err := h.runService.ListRuns(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, runs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/runs/:id
// @Summary Get a validation run
// @Description Get a run together with its per-document validation results
// @Tags runs
// @Produce json
// @Param id path string true "Run ID (UUID)"
// @Success 200 {object} Response{data=RunWithDocuments} "Run with its documents"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Run not found"
// @Router /runs/{id} [get]
func (h *RunHandler) GetByID(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid run ID format")
		return
	}

	run, docs, err := h.runService.GetRun(c.Request.Context(), runID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"run": run, "documents": docs})
}

// GetReport handles GET /api/v1/runs/:id/report
// @Summary Get a run's validation report
// @Description Get the stored validation report of a completed run, exactly as the engine produced it
// @Tags runs
// @Produce json
// @Success 200 {object} ValidationReport "Validation report"
// @Failure 400 {object} ErrorResponseBody "Invalid ID or run not completed"
// @Failure 404 {object} ErrorResponseBody "Run not found"
// @Param id path string true "Run ID (UUID)"
// @Router /runs/{id}/report [get]
func (h *RunHandler) GetReport(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid run ID format")
		return
	}

	report, err := h.runService.GetReport(c.Request.Context(), runID)
	if err != nil {
		HandleError(c, err)
		return
	}

	// Serve the stored report bytes untouched so the payload stays
	// byte-identical to what the engine produced.
	c.Data(http.StatusOK, "application/json; charset=utf-8", report)
}

// Export handles GET /api/v1/runs/:id/export
// @Summary Export a run's violations
// @Description Download the violations of a completed run as CSV or XLSX
// @Tags runs
// @Produce text/csv
// @Param id path string true "Run ID (UUID)"
// @Param format query string false "Export format: csv or xlsx" default(csv)
// @Param columns query string false "Comma-separated CSV column subset"
// @Success 200 {file} file "Export file"
// @Failure 400 {object} ErrorResponseBody "Invalid ID, format, or columns"
// @Failure 404 {object} ErrorResponseBody "Run not found"
// @Router /runs/{id}/export [get]
func (h *RunHandler) Export(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid run ID format")
		return
	}

	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be csv or xlsx")
		return
	}

	run, docs, err := h.runService.GetRun(c.Request.Context(), runID)
	if err != nil {
		HandleError(c, err)
		return
	}
	if run.Status != domain.RunStatusCompleted {
		HandleError(c, domain.ErrRunNotCompleted)
		return
	}

	if format == "xlsx" {
		h.exportXLSX(c, run, docs)
		return
	}
	h.exportCSV(c, run, docs)
}

func (h *RunHandler) exportCSV(c *gin.Context, run *domain.ValidationRun, docs []domain.RunDocument) {
	cols := export.Columns
	if param := c.Query("columns"); param != "" {
		cols = strings.Split(param, ",")
		for i := range cols {
			cols[i] = strings.TrimSpace(cols[i])
		}
	}

	// Constructing the writer validates the column selection without
	// touching the response, so a bad selection can still get a JSON error.
	w, err := export.NewCSVWriterColumns(c.Writer, cols)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_COLUMNS", err.Error())
		return
	}

	filename := export.BuildFilename("run-"+run.ID.String(), "csv")
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	if _, err := c.Writer.Write(export.BOM); err != nil {
		log.Printf("runHandler.Export: writing BOM for run %s: %v", run.ID, err)
		return
	}
	if err := w.WriteHeader(); err != nil {
		log.Printf("runHandler.Export: writing CSV header for run %s: %v", run.ID, err)
		return
	}
	if err := w.WriteDocuments(docs); err != nil {
		log.Printf("runHandler.Export: writing CSV rows for run %s: %v", run.ID, err)
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Printf("runHandler.Export: flushing CSV for run %s: %v", run.ID, err)
	}
}

func (h *RunHandler) exportXLSX(c *gin.Context, run *domain.ValidationRun, docs []domain.RunDocument) {
	f, err := export.BuildWorkbook(run, docs)
	if err != nil {
		log.Printf("runHandler.Export: building workbook for run %s: %v", run.ID, err)
		RespondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "could not build workbook")
		return
	}
	defer func() { _ = f.Close() }()

	filename := export.BuildFilename("run-"+run.ID.String(), "xlsx")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	if err := f.Write(c.Writer); err != nil {
		log.Printf("runHandler.Export: writing workbook for run %s: %v", run.ID, err)
	}
}
