package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/platemate/backend/internal/middleware"
	"github.com/platemate/backend/internal/models"
	"github.com/platemate/backend/internal/service"
)

// RecipeHandler exposes recipe CRUD, relation toggles and the shopping
// list export.
type RecipeHandler struct {
	recipes     *service.RecipeService
	relations   *service.RelationService
	shopping    *service.ShoppingListService
	auth        *service.AuthService
	rateLimiter *middleware.RateLimiter
}

func NewRecipeHandler(recipes *service.RecipeService, relations *service.RelationService, shopping *service.ShoppingListService, auth *service.AuthService, rateLimiter *middleware.RateLimiter) *RecipeHandler {
	return &RecipeHandler{
		recipes:     recipes,
		relations:   relations,
		shopping:    shopping,
		auth:        auth,
		rateLimiter: rateLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.AuthMiddleware(h.auth)
	optionalAuth := middleware.OptionalAuthMiddleware(h.auth)

	write := []gin.HandlerFunc{requireAuth}
	if h.rateLimiter != nil {
		write = append(write, h.rateLimiter.Middleware())
	}

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optionalAuth, h.ListRecipes)
		recipes.GET("/download_shopping_cart", requireAuth, h.DownloadShoppingCart)
		recipes.GET("/:id", optionalAuth, h.GetRecipe)
		recipes.POST("", append(write, h.CreateRecipe)...)
		recipes.PATCH("/:id", append(write, h.UpdateRecipe)...)
		recipes.DELETE("/:id", requireAuth, h.DeleteRecipe)
		recipes.POST("/:id/favorite", requireAuth, h.AddFavorite)
		recipes.DELETE("/:id/favorite", requireAuth, h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", requireAuth, h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", requireAuth, h.RemoveFromCart)
	}
}

type recipeIngredientRequest struct {
	ID     uuid.UUID `json:"id"`
	Amount int       `json:"amount"`
}

type recipeRequest struct {
	Name        string                    `json:"name"`
	Text        string                    `json:"text"`
	Image       string                    `json:"image"`
	CookingTime int                       `json:"cooking_time"`
	Ingredients []recipeIngredientRequest `json:"ingredients"`
	Tags        []uuid.UUID               `json:"tags"`
}

func (r recipeRequest) toInput() service.RecipeInput {
	lines := make([]service.IngredientAmount, 0, len(r.Ingredients))
	for _, line := range r.Ingredients {
		lines = append(lines, service.IngredientAmount{
			IngredientID: line.ID,
			Amount:       line.Amount,
		})
	}
	return service.RecipeInput{
		Name:        r.Name,
		Text:        r.Text,
		Image:       r.Image,
		CookingTime: r.CookingTime,
		Ingredients: lines,
		TagIDs:      r.Tags,
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	page, limit := pageParams(c)
	filter := service.RecipeFilter{
		TagSlugs:  c.QueryArray("tags"),
		Favorited: c.Query("is_favorited") == "1" || c.Query("is_favorited") == "true",
		InCart:    c.Query("is_in_shopping_cart") == "1" || c.Query("is_in_shopping_cart") == "true",
		ViewerID:  viewerID(c),
		Page:      page,
		Limit:     limit,
	}
	if author := c.Query("author"); author != "" {
		authorID, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		filter.AuthorID = &authorID
	}

	recipes, total, err := h.recipes.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		resp, err := buildRecipeResponse(c.Request.Context(), h.relations, filter.ViewerID, &recipes[i])
		if err != nil {
			respondError(c, err)
			return
		}
		results = append(results, resp)
	}

	c.JSON(http.StatusOK, PagedResponse{Count: total, Results: results})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := buildRecipeResponse(c.Request.Context(), h.relations, viewerID(c), recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	viewer := viewerID(c)
	recipe, err := h.recipes.Create(c.Request.Context(), viewer, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := buildRecipeResponse(c.Request.Context(), h.relations, viewer, recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	viewer := viewerID(c)
	recipe, err := h.recipes.Update(c.Request.Context(), viewer, id, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := buildRecipeResponse(c.Request.Context(), h.relations, viewer, recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), viewerID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.addRelation(c, h.relations.AddFavorite, "recipe added to favorites")
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.removeRelation(c, h.relations.RemoveFavorite, "not in favorites")
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.addRelation(c, h.relations.AddToCart, "recipe added to shopping cart")
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.removeRelation(c, h.relations.RemoveFromCart, "not in shopping cart")
}

func (h *RecipeHandler) addRelation(c *gin.Context, add func(context.Context, uuid.UUID, uuid.UUID) error, detail string) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	if err := add(c.Request.Context(), viewerID(c), recipeID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"detail": detail})
}

// removeRelation deletes the relation row; an absent relation is a 400, a
// deliberate policy over the silent 204 alternative.
func (h *RecipeHandler) removeRelation(c *gin.Context, remove func(context.Context, uuid.UUID, uuid.UUID) error, missing string) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	if err := remove(c.Request.Context(), viewerID(c), recipeID); err != nil {
		if err == service.ErrNotFound {
			c.JSON(http.StatusBadRequest, gin.H{"error": missing})
			return
		}
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart exports the aggregated shopping list as a text
// attachment. An empty cart yields an empty document.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	entries, err := h.shopping.Aggregate(c.Request.Context(), viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	body := service.RenderShoppingList(entries)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", service.ShoppingListFilename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}

// buildRecipeResponse resolves the representation for one recipe, including
// the viewer's is_favorited / is_in_shopping_cart projections.
func buildRecipeResponse(ctx context.Context, relations *service.RelationService, viewer uuid.UUID, recipe *models.Recipe) (RecipeResponse, error) {
	favorited, err := relations.IsFavorited(ctx, viewer, recipe.ID)
	if err != nil {
		return RecipeResponse{}, err
	}
	inCart, err := relations.IsInCart(ctx, viewer, recipe.ID)
	if err != nil {
		return RecipeResponse{}, err
	}
	subscribed, err := relations.IsSubscribed(ctx, viewer, recipe.AuthorID)
	if err != nil {
		return RecipeResponse{}, err
	}

	tags := make([]TagResponse, 0, len(recipe.Tags))
	for _, link := range recipe.Tags {
		tags = append(tags, newTagResponse(link.Tag))
	}

	lines := make([]IngredientLineResponse, 0, len(recipe.Ingredients))
	for _, line := range recipe.Ingredients {
		lines = append(lines, IngredientLineResponse{
			ID:              line.IngredientID,
			Name:            line.Ingredient.Name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Amount:          line.Amount,
		})
	}

	return RecipeResponse{
		ID: recipe.ID,
		Author: UserResponse{
			ID:           recipe.Author.ID,
			Username:     recipe.Author.Username,
			Email:        recipe.Author.Email,
			FirstName:    recipe.Author.FirstName,
			LastName:     recipe.Author.LastName,
			IsSubscribed: subscribed,
		},
		Name:             recipe.Name,
		Image:            recipe.ImageURL,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
		Tags:             tags,
		Ingredients:      lines,
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
		CreatedAt:        recipe.CreatedAt,
	}, nil
}
