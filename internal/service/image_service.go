package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	apperrors "estate/internal/errors"
	"estate/internal/model"
	"estate/internal/repository"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// ImageService stores and serves uploaded pictures.
type ImageService interface {
	Upload(ctx context.Context, caller model.Caller, filename string, r io.Reader) (*model.Image, error)
	Get(ctx context.Context, id string) (*model.Image, error)
}

type imageService struct {
	repo repository.ImageRepository
}

// NewImageService creates a new image service.
func NewImageService(repo repository.ImageRepository) ImageService {
	return &imageService{repo: repo}
}

// Upload reads at most MaxImageSize bytes. The content type is sniffed from
// the data, never taken from the client.
func (s *imageService) Upload(ctx context.Context, caller model.Caller, filename string, r io.Reader) (*model.Image, error) {
	if !caller.Authenticated() {
		return nil, apperrors.Unauthorized("Unauthorized")
	}

	data, err := io.ReadAll(io.LimitReader(r, model.MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return nil, apperrors.Validation("Image is required")
	}
	if len(data) > model.MaxImageSize {
		return nil, apperrors.Validation("Image must be less than 2 MB")
	}

	contentType := http.DetectContentType(data)
	if !allowedImageTypes[contentType] {
		return nil, apperrors.Validation("Only jpeg, png, webp and gif images are allowed")
	}

	image := &model.Image{
		Filename:    filepath.Base(filename),
		ContentType: contentType,
		Size:        int64(len(data)),
		OwnerRef:    caller.ID,
		Data:        data,
	}
	if err := s.repo.Create(ctx, image); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	return image, nil
}

func (s *imageService) Get(ctx context.Context, id string) (*model.Image, error) {
	image, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrImageNotFound
		}
		return nil, fmt.Errorf("find image %s: %w", id, err)
	}
	return image, nil
}
