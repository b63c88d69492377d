package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platemate/backend/internal/models"
	"github.com/platemate/backend/internal/testhelpers"
)

func TestRegisterEndpoint(t *testing.T) {
	env := setupAPITest(t)

	w := env.request(t, http.MethodPost, "/api/v1/users", "", gin.H{
		"username":   "newcook",
		"email":      "newcook@example.com",
		"first_name": "New",
		"last_name":  "Cook",
		"password":   "supersecret",
	})
	requireStatus(t, w, http.StatusCreated)

	var resp UserResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "newcook", resp.Username)
	assert.NotEqual(t, uuid.Nil, resp.ID)

	// Missing required fields.
	w = env.request(t, http.MethodPost, "/api/v1/users", "", gin.H{"username": "nopassword"})
	requireStatus(t, w, http.StatusBadRequest)

	// Duplicate email.
	w = env.request(t, http.MethodPost, "/api/v1/users", "", gin.H{
		"username": "othercook",
		"email":    "newcook@example.com",
		"password": "supersecret",
	})
	requireStatus(t, w, http.StatusBadRequest)
}

func TestLoginAndLogoutEndpoints(t *testing.T) {
	env := setupAPITest(t)

	testhelpers.CreateTestUser(t, env.db, "cook")

	w := env.request(t, http.MethodPost, "/api/v1/auth/token/login", "", gin.H{
		"email":    "cook@example.com",
		"password": testhelpers.TestPassword,
	})
	requireStatus(t, w, http.StatusCreated)

	var body map[string]string
	decodeBody(t, w, &body)
	token := body["auth_token"]
	require.NotEmpty(t, token)

	w = env.request(t, http.MethodGet, "/api/v1/users/me", token, nil)
	requireStatus(t, w, http.StatusOK)

	w = env.request(t, http.MethodPost, "/api/v1/auth/token/logout", token, nil)
	requireStatus(t, w, http.StatusNoContent)

	// The revoked token no longer authenticates.
	w = env.request(t, http.MethodGet, "/api/v1/users/me", token, nil)
	requireStatus(t, w, http.StatusUnauthorized)

	w = env.request(t, http.MethodPost, "/api/v1/auth/token/login", "", gin.H{
		"email":    "cook@example.com",
		"password": "wrongpass",
	})
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestSetPasswordEndpoint(t *testing.T) {
	env := setupAPITest(t)

	user := testhelpers.CreateTestUser(t, env.db, "cook")
	token := env.tokenFor(t, user)

	w := env.request(t, http.MethodPost, "/api/v1/users/set_password", token, gin.H{
		"current_password": "wrongpass",
		"new_password":     "freshsecret",
	})
	requireStatus(t, w, http.StatusUnauthorized)

	w = env.request(t, http.MethodPost, "/api/v1/users/set_password", token, gin.H{
		"current_password": testhelpers.TestPassword,
		"new_password":     "freshsecret",
	})
	requireStatus(t, w, http.StatusNoContent)

	w = env.request(t, http.MethodPost, "/api/v1/auth/token/login", "", gin.H{
		"email":    "cook@example.com",
		"password": "freshsecret",
	})
	requireStatus(t, w, http.StatusCreated)
}

func TestSubscribeEndpoints(t *testing.T) {
	env := setupAPITest(t)

	reader := testhelpers.CreateTestUser(t, env.db, "reader")
	author := testhelpers.CreateTestUser(t, env.db, "writer")
	token := env.tokenFor(t, reader)

	sugar := testhelpers.CreateTestIngredient(t, env.db, "Sugar", "g")
	testhelpers.CreateTestRecipe(t, env.db, author.ID, "cake", map[*models.Ingredient]int{sugar: 100})

	path := "/api/v1/users/" + author.ID.String() + "/subscribe"

	w := env.request(t, http.MethodPost, path, token, nil)
	requireStatus(t, w, http.StatusCreated)

	var resp UserWithRecipesResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "writer", resp.Username)
	assert.True(t, resp.IsSubscribed)
	assert.EqualValues(t, 1, resp.RecipesCount)
	require.Len(t, resp.Recipes, 1)
	assert.Equal(t, "cake", resp.Recipes[0].Name)

	// Self-subscription is rejected.
	w = env.request(t, http.MethodPost, "/api/v1/users/"+reader.ID.String()+"/subscribe", token, nil)
	requireStatus(t, w, http.StatusBadRequest)

	// The feed lists followed authors with their recipes.
	w = env.request(t, http.MethodGet, "/api/v1/users/subscriptions", token, nil)
	requireStatus(t, w, http.StatusOK)
	var page struct {
		Count   int64                     `json:"count"`
		Results []UserWithRecipesResponse `json:"results"`
	}
	decodeBody(t, w, &page)
	assert.EqualValues(t, 1, page.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "writer", page.Results[0].Username)

	w = env.request(t, http.MethodDelete, path, token, nil)
	requireStatus(t, w, http.StatusNoContent)

	w = env.request(t, http.MethodDelete, path, token, nil)
	requireStatus(t, w, http.StatusBadRequest)

	w = env.request(t, http.MethodPost, "/api/v1/users/"+uuid.NewString()+"/subscribe", token, nil)
	requireStatus(t, w, http.StatusNotFound)
}

func TestUserDirectoryEndpoints(t *testing.T) {
	env := setupAPITest(t)

	alice := testhelpers.CreateTestUser(t, env.db, "alice")
	bob := testhelpers.CreateTestUser(t, env.db, "bob")
	token := env.tokenFor(t, alice)

	w := env.request(t, http.MethodGet, "/api/v1/users", "", nil)
	requireStatus(t, w, http.StatusOK)
	var page struct {
		Count   int64          `json:"count"`
		Results []UserResponse `json:"results"`
	}
	decodeBody(t, w, &page)
	assert.EqualValues(t, 2, page.Count)

	w = env.request(t, http.MethodGet, "/api/v1/users/"+bob.ID.String(), token, nil)
	requireStatus(t, w, http.StatusOK)
	var resp UserResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "bob", resp.Username)
	assert.False(t, resp.IsSubscribed)

	w = env.request(t, http.MethodGet, "/api/v1/users/"+uuid.NewString(), "", nil)
	requireStatus(t, w, http.StatusNotFound)

	// Me requires auth.
	w = env.request(t, http.MethodGet, "/api/v1/users/me", "", nil)
	requireStatus(t, w, http.StatusUnauthorized)

	w = env.request(t, http.MethodGet, "/api/v1/users/me", token, nil)
	requireStatus(t, w, http.StatusOK)
	decodeBody(t, w, &resp)
	assert.Equal(t, "alice", resp.Username)
}
