package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "cardenrich/docs" // registers the OpenAPI document with swag
	"cardenrich/internal/handler"
	"cardenrich/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	extractH *handler.ExtractHandler,
	healthH *handler.HealthHandler,
	allowedOrigins []string,
	logger *zap.Logger,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// Upload form
	r.GET("/", handler.Index)

	// Path used by the upload form
	r.POST("/api/extract", extractH.Extract)

	v1 := r.Group("/api/v1")
	v1.POST("/extract", extractH.Extract)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
