package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/platemate/backend/internal/models"
)

// TestPassword is the plaintext password for every fixture user.
const TestPassword = "password123"

// MemoryImageStore keeps uploaded images in memory and hands back fake URLs.
type MemoryImageStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
}

func NewMemoryImageStore() *MemoryImageStore {
	return &MemoryImageStore{Objects: make(map[string][]byte)}
}

func (m *MemoryImageStore) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = data
	return "https://images.test/" + key, nil
}

// CreateTestUser inserts a user with the shared test password.
func CreateTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hashed),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return &user
}

// CreateTestIngredient inserts a catalog entry.
func CreateTestIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()

	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("failed to create test ingredient: %v", err)
	}
	return &ingredient
}

// CreateTestTag inserts a tag.
func CreateTestTag(t *testing.T, db *gorm.DB, name, slug string) *models.Tag {
	t.Helper()

	tag := models.Tag{Name: name, Color: randomColor(slug), Slug: slug}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatalf("failed to create test tag: %v", err)
	}
	return &tag
}

// randomColor derives a distinct-ish hex color so the unique constraint on
// tag colors is not violated across fixtures.
func randomColor(seed string) string {
	sum := 0
	for _, r := range seed {
		sum += int(r)
	}
	return fmt.Sprintf("#%06x", (sum*2654435)%0xFFFFFF)
}

// CreateTestRecipe inserts a recipe with the given ingredient lines.
func CreateTestRecipe(t *testing.T, db *gorm.DB, authorID uuid.UUID, name string, lines map[*models.Ingredient]int) *models.Recipe {
	t.Helper()

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        name,
		Text:        "test recipe",
		ImageURL:    "https://images.test/recipes/" + name + ".png",
		CookingTime: 30,
	}
	if err := db.Create(&recipe).Error; err != nil {
		t.Fatalf("failed to create test recipe: %v", err)
	}

	for ingredient, amount := range lines {
		line := models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: ingredient.ID,
			Amount:       amount,
		}
		if err := db.Create(&line).Error; err != nil {
			t.Fatalf("failed to create test recipe line: %v", err)
		}
	}
	return &recipe
}

// PNGDataURI is a tiny valid data-URI image payload for recipe writes.
const PNGDataURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="
