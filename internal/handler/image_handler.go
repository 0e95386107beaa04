package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"estate/internal/auth"
	apperrors "estate/internal/errors"
	"estate/internal/service"
)

// ImageHandler handles image upload and download.
type ImageHandler struct {
	images service.ImageService
}

// NewImageHandler creates a new image handler.
func NewImageHandler(images service.ImageService) *ImageHandler {
	return &ImageHandler{images: images}
}

// UploadResponse points at a stored image.
type UploadResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// UploadImage godoc
// @Summary Upload an image
// @Description Accepts jpeg, png, webp or gif up to 2 MB. The returned url can be put in a listing's imageUrls.
// @Tags images
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image file"
// @Success 201 {object} UploadResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /images [post]
func (h *ImageHandler) UploadImage(c echo.Context) error {
	header, err := c.FormFile("image")
	if err != nil {
		return apperrors.Validation("Image is required")
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.Validation("Image is required")
	}
	defer file.Close()

	image, err := h.images.Upload(c.Request().Context(), auth.CallerFrom(c), header.Filename, file)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, UploadResponse{ID: image.ID, URL: "/api/images/" + image.ID})
}

// GetImage godoc
// @Summary Download an image
// @Tags images
// @Produce octet-stream
// @Param id path string true "Image ID"
// @Success 200 {file} file
// @Failure 404 {object} errors.ErrorResponse
// @Router /images/{id} [get]
func (h *ImageHandler) GetImage(c echo.Context) error {
	image, err := h.images.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	// Stored images never change.
	c.Response().Header().Set("Cache-Control", "public, max-age=86400, immutable")
	return c.Blob(http.StatusOK, image.ContentType, image.Data)
}
