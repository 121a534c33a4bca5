package router

import (
	"github.com/gin-gonic/gin"

	"tallybridge/internal/config"
	"tallybridge/internal/handler"
	"tallybridge/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	convertH *handler.ConvertHandler,
	bankH *handler.BankHandler,
	exportH *handler.ExportHandler,
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

	v1 := r.Group("/api/v1")

	convert := v1.Group("/convert")
	convert.POST("/gst/:type", convertH.Convert)
	convert.POST("/bank", bankH.Convert)

	exports := v1.Group("/export")
	exports.POST("/transactions", exportH.Transactions)

	return r
}
