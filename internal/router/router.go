package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"invoiceqc/internal/config"
	"invoiceqc/internal/handler"
	"invoiceqc/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	validateH *handler.ValidateHandler,
	runH *handler.RunHandler,
	statsH *handler.StatsHandler,
	infoH *handler.InfoHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// Swagger documentation
	r.GET("/api-docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/api-docs", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/api-docs/index.html")
	})

	// The pre-versioning info path stays routable for older clients.
	r.GET("/api/info", infoH.GetInfo)

	v1 := r.Group("/api/v1")

	v1.POST("/validate", validateH.Validate)

	runs := v1.Group("/runs")
	runs.POST("", runH.Create)
	runs.GET("", runH.List)
	runs.GET("/:id", runH.GetByID)
	runs.GET("/:id/report", runH.GetReport)
	runs.GET("/:id/export", runH.Export)

	v1.GET("/stats", statsH.GetStats)
	v1.GET("/info", infoH.GetInfo)

	return r
}
