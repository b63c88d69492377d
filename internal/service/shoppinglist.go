package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShoppingListFilename is the attachment name for the exported document.
const ShoppingListFilename = "shopping_list.txt"

// ShoppingListEntry is one aggregated line: the summed amount for an
// (ingredient name, measurement unit) pair across every cart recipe.
type ShoppingListEntry struct {
	Name            string
	MeasurementUnit string
	Amount          int
}

// ShoppingListService aggregates the ingredient lines of every recipe in a
// user's cart. Pure read: it mutates nothing.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Aggregate sums amounts grouped by (name, unit). The same ingredient name
// under two units yields two entries. An empty cart yields an empty slice.
// Ordering by name then unit makes the result reproducible.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uuid.UUID) ([]ShoppingListEntry, error) {
	var entries []ShoppingListEntry
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_cart_items ON shopping_cart_items.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_cart_items.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name, ingredients.measurement_unit").
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// RenderShoppingList formats the aggregation as one line per entry.
// An empty aggregation renders as an empty document.
func RenderShoppingList(entries []ShoppingListEntry) string {
	if len(entries) == 0 {
		return ""
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s (%s) — %d", e.Name, e.MeasurementUnit, e.Amount))
	}
	return strings.Join(lines, "\n")
}
