package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/platemate/backend/internal/middleware"
	"github.com/platemate/backend/internal/models"
	"github.com/platemate/backend/internal/service"
)

// UserHandler exposes registration, the user directory and subscriptions.
type UserHandler struct {
	users     *service.UserService
	relations *service.RelationService
	recipes   *service.RecipeService
	auth      *service.AuthService
}

func NewUserHandler(users *service.UserService, relations *service.RelationService, recipes *service.RecipeService, auth *service.AuthService) *UserHandler {
	return &UserHandler{
		users:     users,
		relations: relations,
		recipes:   recipes,
		auth:      auth,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("", middleware.OptionalAuthMiddleware(h.auth), h.ListUsers)
		users.GET("/me", middleware.AuthMiddleware(h.auth), h.Me)
		users.GET("/subscriptions", middleware.AuthMiddleware(h.auth), h.Subscriptions)
		users.POST("/set_password", middleware.AuthMiddleware(h.auth), h.SetPassword)
		users.GET("/:id", middleware.OptionalAuthMiddleware(h.auth), h.GetUser)
		users.POST("/:id/subscribe", middleware.AuthMiddleware(h.auth), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.AuthMiddleware(h.auth), h.Unsubscribe)
	}
}

type registerRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password" binding:"required"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, limit := pageParams(c)
	users, total, err := h.users.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	viewer := viewerID(c)
	results := make([]UserResponse, 0, len(users))
	for i := range users {
		resp, err := h.userResponse(c.Request.Context(), viewer, &users[i])
		if err != nil {
			respondError(c, err)
			return
		}
		results = append(results, resp)
	}

	c.JSON(http.StatusOK, PagedResponse{Count: total, Results: results})
}

func (h *UserHandler) Me(c *gin.Context) {
	viewer := viewerID(c)
	user, err := h.users.Get(c.Request.Context(), viewer)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.userResponse(c.Request.Context(), viewer, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.userResponse(c.Request.Context(), viewerID(c), user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type setPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req setPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "current_password and new_password are required"})
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), viewerID(c), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	viewer := viewerID(c)
	if err := h.relations.Subscribe(c.Request.Context(), viewer, authorID); err != nil {
		respondError(c, err)
		return
	}

	author, err := h.users.Get(c.Request.Context(), authorID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.userWithRecipesResponse(c.Request.Context(), viewer, author)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Unsubscribe removes the relation; removing one that does not exist is a
// 400, not a silent success.
func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.relations.Unsubscribe(c.Request.Context(), viewerID(c), authorID); err != nil {
		if err == service.ErrNotFound {
			c.JSON(http.StatusBadRequest, gin.H{"error": "not subscribed"})
			return
		}
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	viewer := viewerID(c)
	authors, err := h.users.Subscriptions(c.Request.Context(), viewer)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]UserWithRecipesResponse, 0, len(authors))
	for i := range authors {
		resp, err := h.userWithRecipesResponse(c.Request.Context(), viewer, &authors[i])
		if err != nil {
			respondError(c, err)
			return
		}
		results = append(results, resp)
	}

	c.JSON(http.StatusOK, PagedResponse{Count: int64(len(results)), Results: results})
}

func (h *UserHandler) userResponse(ctx context.Context, viewer uuid.UUID, user *models.User) (UserResponse, error) {
	subscribed, err := h.relations.IsSubscribed(ctx, viewer, user.ID)
	if err != nil {
		return UserResponse{}, err
	}
	return UserResponse{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: subscribed,
	}, nil
}

func (h *UserHandler) userWithRecipesResponse(ctx context.Context, viewer uuid.UUID, author *models.User) (UserWithRecipesResponse, error) {
	base, err := h.userResponse(ctx, viewer, author)
	if err != nil {
		return UserWithRecipesResponse{}, err
	}

	authorID := author.ID
	recipes, _, err := h.recipes.List(ctx, service.RecipeFilter{AuthorID: &authorID, ViewerID: viewer})
	if err != nil {
		return UserWithRecipesResponse{}, err
	}

	items := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		item, err := buildRecipeResponse(ctx, h.relations, viewer, &recipes[i])
		if err != nil {
			return UserWithRecipesResponse{}, err
		}
		items = append(items, item)
	}

	count, err := h.users.RecipeCount(ctx, author.ID)
	if err != nil {
		return UserWithRecipesResponse{}, err
	}

	return UserWithRecipesResponse{
		UserResponse: base,
		Recipes:      items,
		RecipesCount: count,
	}, nil
}
