package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platemate/backend/internal/models"
	"github.com/platemate/backend/internal/service"
	"github.com/platemate/backend/internal/testhelpers"
)

func recipePayload(flour, eggs *models.Ingredient, tag *models.Tag) gin.H {
	return gin.H{
		"name":         "Pancakes",
		"text":         "Mix and fry.",
		"image":        testhelpers.PNGDataURI,
		"cooking_time": 20,
		"ingredients": []gin.H{
			{"id": flour.ID, "amount": 200},
			{"id": eggs.ID, "amount": 2},
		},
		"tags": []uuid.UUID{tag.ID},
	}
}

func TestRecipeLifecycleOverHTTP(t *testing.T) {
	env := setupAPITest(t)

	author := testhelpers.CreateTestUser(t, env.db, "author")
	token := env.tokenFor(t, author)
	flour := testhelpers.CreateTestIngredient(t, env.db, "Flour", "g")
	eggs := testhelpers.CreateTestIngredient(t, env.db, "Eggs", "pcs")
	dinner := testhelpers.CreateTestTag(t, env.db, "Dinner", "dinner")

	// Anonymous writes are rejected.
	w := env.request(t, http.MethodPost, "/api/v1/recipes", "", recipePayload(flour, eggs, dinner))
	requireStatus(t, w, http.StatusUnauthorized)

	w = env.request(t, http.MethodPost, "/api/v1/recipes", token, recipePayload(flour, eggs, dinner))
	requireStatus(t, w, http.StatusCreated)

	var created RecipeResponse
	decodeBody(t, w, &created)
	assert.Equal(t, "Pancakes", created.Name)
	assert.Equal(t, "author", created.Author.Username)
	assert.False(t, created.IsFavorited)
	assert.Len(t, created.Ingredients, 2)
	require.Len(t, created.Tags, 1)
	assert.Equal(t, "dinner", created.Tags[0].Slug)

	// Anyone may read.
	w = env.request(t, http.MethodGet, "/api/v1/recipes/"+created.ID.String(), "", nil)
	requireStatus(t, w, http.StatusOK)

	w = env.request(t, http.MethodPatch, "/api/v1/recipes/"+created.ID.String(), token, gin.H{
		"name":         "Thin Pancakes",
		"text":         "Mix well.",
		"cooking_time": 15,
		"ingredients":  []gin.H{{"id": eggs.ID, "amount": 4}},
	})
	requireStatus(t, w, http.StatusOK)

	var updated RecipeResponse
	decodeBody(t, w, &updated)
	assert.Equal(t, "Thin Pancakes", updated.Name)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, 4, updated.Ingredients[0].Amount)
	assert.Equal(t, created.Image, updated.Image)

	// Non-authors can neither update nor delete.
	intruder := testhelpers.CreateTestUser(t, env.db, "intruder")
	intruderToken := env.tokenFor(t, intruder)
	w = env.request(t, http.MethodPatch, "/api/v1/recipes/"+created.ID.String(), intruderToken, recipePayload(flour, eggs, dinner))
	requireStatus(t, w, http.StatusForbidden)
	w = env.request(t, http.MethodDelete, "/api/v1/recipes/"+created.ID.String(), intruderToken, nil)
	requireStatus(t, w, http.StatusForbidden)

	w = env.request(t, http.MethodDelete, "/api/v1/recipes/"+created.ID.String(), token, nil)
	requireStatus(t, w, http.StatusNoContent)

	w = env.request(t, http.MethodGet, "/api/v1/recipes/"+created.ID.String(), "", nil)
	requireStatus(t, w, http.StatusNotFound)
}

func TestRecipeValidationOverHTTP(t *testing.T) {
	env := setupAPITest(t)

	author := testhelpers.CreateTestUser(t, env.db, "author")
	token := env.tokenFor(t, author)
	flour := testhelpers.CreateTestIngredient(t, env.db, "Flour", "g")

	w := env.request(t, http.MethodPost, "/api/v1/recipes", token, gin.H{
		"name":         "No Ingredients",
		"text":         "Nothing here.",
		"image":        testhelpers.PNGDataURI,
		"cooking_time": 10,
		"ingredients":  []gin.H{},
	})
	requireStatus(t, w, http.StatusBadRequest)

	var body map[string]string
	decodeBody(t, w, &body)
	assert.Equal(t, "ingredients", body["field"])

	w = env.request(t, http.MethodPost, "/api/v1/recipes", token, gin.H{
		"name":         "Duplicates",
		"text":         "Twice the flour.",
		"image":        testhelpers.PNGDataURI,
		"cooking_time": 10,
		"ingredients": []gin.H{
			{"id": flour.ID, "amount": 100},
			{"id": flour.ID, "amount": 200},
		},
	})
	requireStatus(t, w, http.StatusBadRequest)
}

func TestFavoriteEndpoints(t *testing.T) {
	env := setupAPITest(t)

	author := testhelpers.CreateTestUser(t, env.db, "author")
	fan := testhelpers.CreateTestUser(t, env.db, "fan")
	fanToken := env.tokenFor(t, fan)
	sugar := testhelpers.CreateTestIngredient(t, env.db, "Sugar", "g")
	recipe := testhelpers.CreateTestRecipe(t, env.db, author.ID, "cake", map[*models.Ingredient]int{sugar: 100})

	path := "/api/v1/recipes/" + recipe.ID.String() + "/favorite"

	w := env.request(t, http.MethodPost, path, fanToken, nil)
	requireStatus(t, w, http.StatusCreated)

	// Repeating the add succeeds without a second row.
	w = env.request(t, http.MethodPost, path, fanToken, nil)
	requireStatus(t, w, http.StatusCreated)

	var count int64
	env.db.Model(&models.FavoriteRecipe{}).Where("user_id = ?", fan.ID).Count(&count)
	assert.EqualValues(t, 1, count)

	// The viewer's flag shows up in reads.
	w = env.request(t, http.MethodGet, "/api/v1/recipes/"+recipe.ID.String(), fanToken, nil)
	requireStatus(t, w, http.StatusOK)
	var resp RecipeResponse
	decodeBody(t, w, &resp)
	assert.True(t, resp.IsFavorited)

	w = env.request(t, http.MethodDelete, path, fanToken, nil)
	requireStatus(t, w, http.StatusNoContent)

	w = env.request(t, http.MethodDelete, path, fanToken, nil)
	requireStatus(t, w, http.StatusBadRequest)

	// Unknown recipe.
	w = env.request(t, http.MethodPost, "/api/v1/recipes/"+uuid.NewString()+"/favorite", fanToken, nil)
	requireStatus(t, w, http.StatusNotFound)
}

func TestRecipeListFiltersOverHTTP(t *testing.T) {
	env := setupAPITest(t)

	author := testhelpers.CreateTestUser(t, env.db, "author")
	token := env.tokenFor(t, author)
	sugar := testhelpers.CreateTestIngredient(t, env.db, "Sugar", "g")
	breakfast := testhelpers.CreateTestTag(t, env.db, "Breakfast", "breakfast")

	tagged := testhelpers.CreateTestRecipe(t, env.db, author.ID, "porridge", map[*models.Ingredient]int{sugar: 10})
	require.NoError(t, env.db.Create(&models.RecipeTag{RecipeID: tagged.ID, TagID: breakfast.ID}).Error)
	plain := testhelpers.CreateTestRecipe(t, env.db, author.ID, "toast", map[*models.Ingredient]int{sugar: 1})

	relations := service.NewRelationService(env.db)
	require.NoError(t, relations.AddFavorite(context.Background(), author.ID, plain.ID))

	w := env.request(t, http.MethodGet, "/api/v1/recipes?tags=breakfast", "", nil)
	requireStatus(t, w, http.StatusOK)
	var page struct {
		Count   int64            `json:"count"`
		Results []RecipeResponse `json:"results"`
	}
	decodeBody(t, w, &page)
	assert.EqualValues(t, 1, page.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "porridge", page.Results[0].Name)

	w = env.request(t, http.MethodGet, "/api/v1/recipes?is_favorited=1", token, nil)
	requireStatus(t, w, http.StatusOK)
	decodeBody(t, w, &page)
	assert.EqualValues(t, 1, page.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "toast", page.Results[0].Name)

	w = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/recipes?author=%s", author.ID), "", nil)
	requireStatus(t, w, http.StatusOK)
	decodeBody(t, w, &page)
	assert.EqualValues(t, 2, page.Count)

	w = env.request(t, http.MethodGet, "/api/v1/recipes?author=not-a-uuid", "", nil)
	requireStatus(t, w, http.StatusBadRequest)
}

func TestDownloadShoppingCart(t *testing.T) {
	env := setupAPITest(t)

	user := testhelpers.CreateTestUser(t, env.db, "shopper")
	token := env.tokenFor(t, user)
	sugarG := testhelpers.CreateTestIngredient(t, env.db, "Sugar", "g")
	sugarCup := testhelpers.CreateTestIngredient(t, env.db, "Sugar", "cup")

	r1 := testhelpers.CreateTestRecipe(t, env.db, user.ID, "cake", map[*models.Ingredient]int{sugarG: 200})
	r2 := testhelpers.CreateTestRecipe(t, env.db, user.ID, "cookies", map[*models.Ingredient]int{sugarG: 50, sugarCup: 1})

	for _, recipe := range []*models.Recipe{r1, r2} {
		w := env.request(t, http.MethodPost, "/api/v1/recipes/"+recipe.ID.String()+"/shopping_cart", token, nil)
		requireStatus(t, w, http.StatusCreated)
	}

	w := env.request(t, http.MethodGet, "/api/v1/recipes/download_shopping_cart", token, nil)
	requireStatus(t, w, http.StatusOK)

	assert.Equal(t, `attachment; filename="shopping_list.txt"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "Sugar (cup) — 1\nSugar (g) — 250", w.Body.String())

	// Anonymous download is rejected.
	w = env.request(t, http.MethodGet, "/api/v1/recipes/download_shopping_cart", "", nil)
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestDownloadShoppingCartEmpty(t *testing.T) {
	env := setupAPITest(t)

	user := testhelpers.CreateTestUser(t, env.db, "emptyhanded")
	token := env.tokenFor(t, user)

	w := env.request(t, http.MethodGet, "/api/v1/recipes/download_shopping_cart", token, nil)
	requireStatus(t, w, http.StatusOK)
	assert.Empty(t, w.Body.String())
}
