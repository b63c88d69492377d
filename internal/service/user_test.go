package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platemate/backend/internal/models"
	"github.com/platemate/backend/internal/service"
	"github.com/platemate/backend/internal/testhelpers"
)

func TestUserGet(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()

	stored := testhelpers.CreateTestUser(t, db, "somebody")
	users := service.NewUserService(db)

	got, err := users.Get(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "somebody", got.Username)

	_, err = users.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUserListPagination(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob", "carol"} {
		testhelpers.CreateTestUser(t, db, name)
	}

	users := service.NewUserService(db)
	page, total, err := users.List(ctx, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, page, 2)

	page, _, err = users.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestUserSubscriptions(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()

	reader := testhelpers.CreateTestUser(t, db, "reader")
	first := testhelpers.CreateTestUser(t, db, "firstauthor")
	second := testhelpers.CreateTestUser(t, db, "secondauthor")
	testhelpers.CreateTestUser(t, db, "unfollowed")

	relations := service.NewRelationService(db)
	require.NoError(t, relations.Subscribe(ctx, reader.ID, first.ID))
	require.NoError(t, relations.Subscribe(ctx, reader.ID, second.ID))

	users := service.NewUserService(db)
	authors, err := users.Subscriptions(ctx, reader.ID)
	require.NoError(t, err)

	names := make([]string, 0, len(authors))
	for _, author := range authors {
		names = append(names, author.Username)
	}
	assert.ElementsMatch(t, []string{"firstauthor", "secondauthor"}, names)
}

func TestUserRecipeCount(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()

	author := testhelpers.CreateTestUser(t, db, "prolific")
	sugar := testhelpers.CreateTestIngredient(t, db, "Sugar", "g")
	for _, name := range []string{"one", "two"} {
		testhelpers.CreateTestRecipe(t, db, author.ID, name, map[*models.Ingredient]int{sugar: 1})
	}

	users := service.NewUserService(db)
	count, err := users.RecipeCount(ctx, author.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	count, err = users.RecipeCount(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, count)
}
