package router

import (
	"github.com/gin-gonic/gin"

	"github.com/platemate/backend/internal/api"
	"github.com/platemate/backend/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(
	healthHandler *api.HealthHandler,
	authHandler *api.AuthHandler,
	userHandler *api.UserHandler,
	tagHandler *api.TagHandler,
	ingredientHandler *api.IngredientHandler,
	recipeHandler *api.RecipeHandler,
) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS())

	// Health check endpoint (no auth required)
	router.GET("/health", healthHandler.Check)

	v1 := router.Group("/api/v1")
	{
		authHandler.RegisterRoutes(v1)
		userHandler.RegisterRoutes(v1)
		tagHandler.RegisterRoutes(v1)
		ingredientHandler.RegisterRoutes(v1)
		recipeHandler.RegisterRoutes(v1)
	}

	return router
}
