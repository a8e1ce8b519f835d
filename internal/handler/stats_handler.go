package handler

import (
	"github.com/gin-gonic/gin"

	"invoiceqc/internal/service"
)

// StatsHandler handles stats endpoints.
type StatsHandler struct {
	statsService service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetStats handles GET /api/v1/stats
// @Summary Get validation statistics
// @Description Get aggregate run and invoice counts across all stored runs, plus the most frequent failing rules
// @Tags stats
// @Produce json
// @Success 200 {object} Response{data=StatsResponse} "Aggregate statistics"
// @Router /stats [get]
func (h *StatsHandler) GetStats(c *gin.Context) {
	stats, topErrors, err := h.statsService.GetStats(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"stats": stats, "top_errors": topErrors})
}
