package endpoints

import (
	"drivegate/internal/config"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes.
func SetupRoutes(r *gin.Engine, deps Deps) {
	api := r.Group("/api")

	// Health check endpoint
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "drivegate",
		})
	})

	// Retrieval routes; protected only when an Auth0 tenant is configured
	files := api.Group("")
	if config.Auth0Domain != "" {
		files.Use(Auth0Middleware())
	}
	{
		files.GET("/fetch", HandleFetch(deps))
		files.GET("/metadata", HandleMetadata(deps))
		files.GET("/history", HandleHistory(deps))
	}
}
