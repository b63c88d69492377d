package service

import (
	"context"
	"errors"
	"regexp"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/platemate/backend/internal/models"
)

// hexColorRe accepts #RGB and #RRGGBB.
var hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// TagService is the read-mostly tag catalog. Tags are created by seeding,
// not through the public API.
type TagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

func (s *TagService) List(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("slug").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *TagService) Get(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tag, nil
}

// GetOrCreate inserts a tag by slug if absent. Used by seeding.
func (s *TagService) GetOrCreate(ctx context.Context, name, color, slug string) (*models.Tag, error) {
	if name == "" || slug == "" {
		return nil, validationErr("slug", "tag name and slug must not be empty")
	}
	if !hexColorRe.MatchString(color) {
		return nil, validationErr("color", "%q is not a 3- or 6-digit hex color", color)
	}

	candidate := models.Tag{Name: name, Color: color, Slug: slug}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&candidate).Error; err != nil {
		return nil, err
	}

	var stored models.Tag
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}
