package http

import (
	"github.com/carcompare/backend/config"
	"github.com/gin-gonic/gin"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// Pages
	router.GET("/", handler.Index)
	router.GET("/compare", handler.CompareStateless)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", handler.CreateSession)
			sessions.DELETE("/:id", handler.CloseSession)
			sessions.GET("/:id/events", handler.Events)
			sessions.POST("/:id/compare", handler.Compare)
			sessions.GET("/:id/comparison", handler.GetComparison)

			slots := sessions.Group("/:id/slots/:slot")
			{
				slots.GET("", handler.GetSlot)
				slots.PUT("/query", handler.UpdateQuery)
				slots.POST("/pick", handler.PickSuggestion)
				slots.POST("/blur", handler.Blur)
			}
		}

		// Make/model selector endpoints
		v1.GET("/makes", handler.ListMakes)
		v1.GET("/makes/:make/models", handler.ListModels)
	}

	return router
}
