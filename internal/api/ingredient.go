package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/platemate/backend/internal/middleware"
	"github.com/platemate/backend/internal/service"
)

// IngredientHandler exposes the ingredient catalog.
type IngredientHandler struct {
	ingredients *service.IngredientService
	auth        *service.AuthService
}

func NewIngredientHandler(ingredients *service.IngredientService, auth *service.AuthService) *IngredientHandler {
	return &IngredientHandler{ingredients: ingredients, auth: auth}
}

func (h *IngredientHandler) RegisterRoutes(router *gin.RouterGroup) {
	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("", h.ListIngredients)
		ingredients.GET("/:id", h.GetIngredient)
		ingredients.POST("", middleware.AuthMiddleware(h.auth), h.CreateIngredient)
	}
}

// ListIngredients filters by case-insensitive name prefix via ?name=.
func (h *IngredientHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.ingredients.List(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]IngredientResponse, 0, len(ingredients))
	for _, ing := range ingredients {
		results = append(results, newIngredientResponse(ing))
	}
	c.JSON(http.StatusOK, results)
}

func (h *IngredientHandler) GetIngredient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingredient id"})
		return
	}

	ingredient, err := h.ingredients.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newIngredientResponse(*ingredient))
}

type ingredientRequest struct {
	Name            string `json:"name" binding:"required"`
	MeasurementUnit string `json:"measurement_unit" binding:"required"`
}

// CreateIngredient is an idempotent get-or-create: concurrent creators of
// the same (name, unit) pair both succeed against the one stored row.
func (h *IngredientHandler) CreateIngredient(c *gin.Context) {
	var req ingredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and measurement_unit are required"})
		return
	}

	ingredient, created, err := h.ingredients.GetOrCreate(c.Request.Context(), req.Name, req.MeasurementUnit)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, newIngredientResponse(*ingredient))
}
