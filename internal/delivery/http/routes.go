package http

import (
	"github.com/gin-gonic/gin"
	"github.com/mealplanner/backend/config"
	"github.com/rs/zerolog"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		v1.GET("/units", handler.ListUnits)
		v1.POST("/units/convert", handler.ConvertUnits)

		quantities := v1.Group("/quantities")
		{
			quantities.POST("/parse", handler.ParseQuantity)
			quantities.POST("/format", handler.FormatQuantity)
			quantities.POST("/calculate", handler.Calculate)
		}

		v1.POST("/shopping-lists", handler.AggregateShoppingList)

		shopping := v1.Group("/users/:userId/shopping-list")
		{
			shopping.GET("", handler.GetShoppingList)
			shopping.PUT("/items/:ingredientId", handler.ToggleItem)
			shopping.DELETE("/items", handler.ClearCheckedItems)
		}
	}

	return router
}
