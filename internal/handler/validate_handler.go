package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"invoiceqc/internal/service"
)

// ValidateHandler handles the synchronous validation endpoint.
type ValidateHandler struct {
	validationService service.ValidationService
}

// NewValidateHandler creates a new ValidateHandler.
func NewValidateHandler(validationService service.ValidationService) *ValidateHandler {
	return &ValidateHandler{validationService: validationService}
}

// ValidateRequest represents the synchronous validation request body.
type ValidateRequest struct {
	Invoices []json.RawMessage `json:"invoices" binding:"required"`
}

// Validate handles POST /api/v1/validate
// @Summary Validate a batch of invoices
// @Description Run the validation rules over a JSON batch of invoices and return the report. Nothing is persisted.
// @Tags validate
// @Accept json
// @Produce json
// @Param request body ValidateRequest true "Batch of invoice objects"
// @Success 200 {object} ValidationReport "Validation report"
// @Failure 400 {object} ErrorResponseBody "Malformed body"
// @Failure 413 {object} ErrorResponseBody "Batch too large"
// @Router /validate [post]
func (h *ValidateHandler) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "body must be a JSON object with an 'invoices' array")
		return
	}

	report, err := h.validationService.ValidateRaw(c.Request.Context(), req.Invoices)
	if err != nil {
		HandleError(c, err)
		return
	}

	// The report is the response body, not wrapped in the envelope, so
	// callers get the same document a stored run would produce.
	c.JSON(http.StatusOK, report)
}
