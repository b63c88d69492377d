package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/platemate/backend/internal/models"
)

// IngredientService is the flat catalog of (name, measurement_unit) pairs.
type IngredientService struct {
	db *gorm.DB
}

func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{db: db}
}

// List returns catalog entries, optionally filtered by case-insensitive
// name prefix, ordered by name then unit.
func (s *IngredientService) List(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	query := s.db.WithContext(ctx).Model(&models.Ingredient{})
	if namePrefix != "" {
		if s.db.Dialector.Name() == "postgres" {
			query = query.Where("name ILIKE ?", namePrefix+"%")
		} else {
			query = query.Where("LOWER(name) LIKE LOWER(?)", namePrefix+"%")
		}
	}

	var ingredients []models.Ingredient
	if err := query.Order("name, measurement_unit").Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// Get retrieves a catalog entry by id.
func (s *IngredientService) Get(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ingredient, nil
}

// GetOrCreate inserts the (name, unit) pair if absent and returns the stored
// row either way. Concurrent creators race through ON CONFLICT DO NOTHING,
// so neither sees a duplicate-key error.
func (s *IngredientService) GetOrCreate(ctx context.Context, name, unit string) (*models.Ingredient, bool, error) {
	if name == "" {
		return nil, false, validationErr("name", "must not be empty")
	}
	if unit == "" {
		return nil, false, validationErr("measurement_unit", "must not be empty")
	}

	candidate := models.Ingredient{Name: name, MeasurementUnit: unit}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&candidate)
	if res.Error != nil {
		return nil, false, res.Error
	}

	// Re-read by the unique key: on conflict the generated id was discarded.
	var stored models.Ingredient
	if err := s.db.WithContext(ctx).
		Where("name = ? AND measurement_unit = ?", name, unit).
		First(&stored).Error; err != nil {
		return nil, false, err
	}
	return &stored, res.RowsAffected > 0, nil
}
