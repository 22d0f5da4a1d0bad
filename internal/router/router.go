package router

import (
	"github.com/gin-gonic/gin"

	"paperbridge/internal/handler"
	"paperbridge/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	allowedOrigins []string,
	docH *handler.DocumentHandler,
	jobH *handler.JobHandler,
	askH *handler.AskHandler,
	reviewH *handler.ReviewHandler,
	exportH *handler.ExportHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Document routes
	docs := v1.Group("/documents")
	docs.POST("", docH.Upload)
	docs.GET("", docH.List)
	docs.GET("/:id", docH.GetByID)
	docs.GET("/:id/pages", docH.ListPages)
	docs.GET("/:id/download", docH.Download)
	docs.DELETE("/:id", docH.Delete)

	// Job triggers on documents
	docs.POST("/:id/extract", jobH.TriggerExtract)
	docs.POST("/:id/embed", jobH.TriggerEmbed)
	docs.POST("/:id/pipeline", jobH.TriggerPipeline)

	// Extraction access and exports
	docs.GET("/:id/extraction", reviewH.GetLatestExtraction)
	docs.GET("/:id/export.json", exportH.ExportJSON)
	docs.GET("/:id/export.csv", exportH.ExportCSV)
	docs.GET("/:id/export.xlsx", exportH.ExportXLSX)

	// Job polling
	v1.GET("/jobs/:id", jobH.GetByID)

	// Question answering
	v1.POST("/ask", askH.Ask)

	// Review
	extractions := v1.Group("/extractions")
	extractions.POST("/:id/review", reviewH.SubmitReview)
	extractions.GET("/:id/edits", reviewH.ListEdits)

	return r
}
