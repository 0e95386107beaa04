package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"estate/internal/model"
)

// ImageRepository stores uploaded image bytes with their metadata.
type ImageRepository interface {
	Create(ctx context.Context, image *model.Image) error
	FindByID(ctx context.Context, id string) (*model.Image, error)
}

type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository builds a GORM-backed image repository.
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, image *model.Image) error {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	return nil
}

func (r *imageRepository) FindByID(ctx context.Context, id string) (*model.Image, error) {
	var image model.Image
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&image).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find image %s: %w", id, err)
	}
	return &image, nil
}
