package handler

import (
	"github.com/gin-gonic/gin"

	"invoiceqc/internal/service"
	"invoiceqc/internal/validator"
)

// InfoHandler serves service metadata and the rule inventory.
type InfoHandler struct {
	validationService service.ValidationService
	version           string
}

// NewInfoHandler creates a new InfoHandler.
func NewInfoHandler(validationService service.ValidationService, version string) *InfoHandler {
	return &InfoHandler{validationService: validationService, version: version}
}

// InfoResponse represents the service info response.
type InfoResponse struct {
	Service string               `json:"service" example:"invoiceqc"`
	Version string               `json:"version" example:"1.0.0"`
	Rules   []validator.RuleInfo `json:"rules"`
}

// GetInfo handles GET /api/v1/info
// @Summary Get service info
// @Description Get the service name, version, and the inventory of validation rules with their categories and severities
// @Tags info
// @Produce json
// @Success 200 {object} Response{data=InfoResponse} "Service info"
// @Router /info [get]
func (h *InfoHandler) GetInfo(c *gin.Context) {
	RespondOK(c, InfoResponse{
		Service: "invoiceqc",
		Version: h.version,
		Rules:   h.validationService.Rules(),
	})
}
