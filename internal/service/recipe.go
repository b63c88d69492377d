package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platemate/backend/internal/models"
)

const (
	MinCookingTime = 1
	MaxCookingTime = 1440
	MinAmount      = 1
	MaxAmount      = 10000
)

// IngredientAmount is one requested ingredient line.
type IngredientAmount struct {
	IngredientID uuid.UUID
	Amount       int
}

// RecipeInput carries the full composition for a create or update: metadata,
// the ingredient-amount lines and the tag references. Updates replace the
// line set and tag set wholesale.
type RecipeInput struct {
	Name        string
	Text        string
	Image       string // data-URI, optional on update
	CookingTime int
	Ingredients []IngredientAmount
	TagIDs      []uuid.UUID
}

// RecipeFilter narrows recipe listings.
type RecipeFilter struct {
	AuthorID  *uuid.UUID
	TagSlugs  []string
	Favorited bool
	InCart    bool
	// ViewerID scopes the Favorited/InCart predicates; uuid.Nil disables them.
	ViewerID uuid.UUID
	Page     int
	Limit    int
}

// RecipeService owns recipe composition: the recipe row, its ingredient
// lines and its tag links are written together in one transaction.
type RecipeService struct {
	db     *gorm.DB
	images ImageStore
}

func NewRecipeService(db *gorm.DB, images ImageStore) *RecipeService {
	return &RecipeService{db: db, images: images}
}

// Create validates and persists a recipe with its full composition. Nothing
// is written unless the whole composition is valid.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, in RecipeInput) (*models.Recipe, error) {
	if err := s.validateComposition(ctx, in); err != nil {
		return nil, err
	}
	if in.Image == "" {
		return nil, validationErr("image", "must not be empty")
	}
	imageURL, err := s.storeImage(ctx, in.Image, in.Name)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        in.Name,
		Text:        in.Text,
		ImageURL:    imageURL,
		CookingTime: in.CookingTime,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		return writeComposition(tx, recipe.ID, in)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipe.ID)
}

// Update replaces the recipe's metadata, ingredient lines and tags
// atomically. Only the author may update; CreatedAt is never touched.
func (s *RecipeService) Update(ctx context.Context, viewerID, recipeID uuid.UUID, in RecipeInput) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if recipe.AuthorID != viewerID {
		return nil, ErrForbidden
	}

	if err := s.validateComposition(ctx, in); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":         in.Name,
		"text":         in.Text,
		"cooking_time": in.CookingTime,
	}
	if in.Image != "" {
		imageURL, err := s.storeImage(ctx, in.Image, in.Name)
		if err != nil {
			return nil, err
		}
		updates["image_url"] = imageURL
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Recipe{}).Where("id = ?", recipeID).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
			return err
		}
		return writeComposition(tx, recipeID, in)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipeID)
}

// Delete removes the recipe and its dependent rows. Author only.
func (s *RecipeService) Delete(ctx context.Context, viewerID, recipeID uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if recipe.AuthorID != viewerID {
		return ErrForbidden
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []interface{}{
			&models.RecipeIngredient{},
			&models.RecipeTag{},
			&models.FavoriteRecipe{},
			&models.ShoppingCartItem{},
		} {
			if err := tx.Where("recipe_id = ?", recipeID).Delete(dependent).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Recipe{}, "id = ?", recipeID).Error
	})
}

// Get loads a recipe with its author, ingredient lines and tags.
func (s *RecipeService) Get(ctx context.Context, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Ingredients.Ingredient").
		Preload("Tags.Tag").
		First(&recipe, "id = ?", recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// List returns a page of recipes matching the filter plus the total count.
func (s *RecipeService) List(ctx context.Context, filter RecipeFilter) ([]models.Recipe, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if filter.AuthorID != nil {
		query = query.Where("author_id = ?", *filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		query = query.Where("id IN (?)", s.db.
			Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs))
	}
	if filter.Favorited && filter.ViewerID != uuid.Nil {
		query = query.Where("id IN (?)", s.db.
			Table("favorite_recipes").
			Select("recipe_id").
			Where("user_id = ?", filter.ViewerID))
	}
	if filter.InCart && filter.ViewerID != uuid.Nil {
		query = query.Where("id IN (?)", s.db.
			Table("shopping_cart_items").
			Select("recipe_id").
			Where("user_id = ?", filter.ViewerID))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	var recipes []models.Recipe
	err := query.
		Preload("Author").
		Preload("Ingredients.Ingredient").
		Preload("Tags.Tag").
		Order("created_at DESC, id").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// validateComposition rejects the whole write before anything is persisted:
// bounds on cooking time and amounts, at least one line, no duplicate
// ingredient reference, and every referenced ingredient and tag must exist.
func (s *RecipeService) validateComposition(ctx context.Context, in RecipeInput) error {
	if in.Name == "" {
		return validationErr("name", "must not be empty")
	}
	if in.CookingTime < MinCookingTime || in.CookingTime > MaxCookingTime {
		return validationErr("cooking_time", "must be between %d and %d minutes", MinCookingTime, MaxCookingTime)
	}
	if len(in.Ingredients) == 0 {
		return validationErr("ingredients", "recipe must have at least one ingredient")
	}

	seen := make(map[uuid.UUID]struct{}, len(in.Ingredients))
	ids := make([]uuid.UUID, 0, len(in.Ingredients))
	for _, line := range in.Ingredients {
		if line.Amount < MinAmount || line.Amount > MaxAmount {
			return validationErr("amount", "must be between %d and %d", MinAmount, MaxAmount)
		}
		if _, dup := seen[line.IngredientID]; dup {
			return validationErr("ingredients", "duplicate ingredient %s", line.IngredientID)
		}
		seen[line.IngredientID] = struct{}{}
		ids = append(ids, line.IngredientID)
	}

	var found int64
	if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).
		Where("id IN ?", ids).Count(&found).Error; err != nil {
		return err
	}
	if found != int64(len(ids)) {
		return validationErr("ingredients", "one or more ingredients do not exist")
	}

	if len(in.TagIDs) > 0 {
		tagIDs := dedupeIDs(in.TagIDs)
		var tagCount int64
		if err := s.db.WithContext(ctx).Model(&models.Tag{}).
			Where("id IN ?", tagIDs).Count(&tagCount).Error; err != nil {
			return err
		}
		if tagCount != int64(len(tagIDs)) {
			return validationErr("tags", "one or more tags do not exist")
		}
	}

	return nil
}

// writeComposition bulk-inserts the ingredient lines and tag links for the
// recipe. Runs inside the caller's transaction.
func writeComposition(tx *gorm.DB, recipeID uuid.UUID, in RecipeInput) error {
	lines := make([]models.RecipeIngredient, 0, len(in.Ingredients))
	for _, line := range in.Ingredients {
		lines = append(lines, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: line.IngredientID,
			Amount:       line.Amount,
		})
	}
	if err := tx.Create(&lines).Error; err != nil {
		return err
	}

	tagIDs := dedupeIDs(in.TagIDs)
	if len(tagIDs) == 0 {
		return nil
	}
	links := make([]models.RecipeTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		links = append(links, models.RecipeTag{RecipeID: recipeID, TagID: tagID})
	}
	return tx.Create(&links).Error
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *RecipeService) storeImage(ctx context.Context, dataURI, name string) (string, error) {
	decoded, err := DecodeImage(dataURI, name)
	if err != nil {
		return "", err
	}
	if s.images == nil {
		return "", errors.New("image store is not configured")
	}
	return s.images.Save(ctx, decoded.Key, decoded.Data, decoded.ContentType)
}
