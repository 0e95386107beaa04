package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"estate/internal/auth"
	apperrors "estate/internal/errors"
	"estate/internal/model"
	"estate/internal/service"
)

// ListingHandler handles listing endpoints.
type ListingHandler struct {
	listings service.ListingService
}

// NewListingHandler creates a new listing handler.
func NewListingHandler(listings service.ListingService) *ListingHandler {
	return &ListingHandler{listings: listings}
}

// CreateListing godoc
// @Summary Create a listing
// @Tags listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param listing body model.ListingInput true "Listing data"
// @Success 201 {object} model.Listing
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /listings [post]
func (h *ListingHandler) CreateListing(c echo.Context) error {
	var input model.ListingInput
	if err := c.Bind(&input); err != nil {
		return apperrors.Validation("Invalid request body")
	}

	listing, err := h.listings.Create(c.Request().Context(), auth.CallerFrom(c), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, listing)
}

// GetListing godoc
// @Summary Get listing by id
// @Tags listings
// @Produce json
// @Param id path string true "Listing ID"
// @Success 200 {object} model.Listing
// @Failure 404 {object} errors.ErrorResponse
// @Router /listings/{id} [get]
func (h *ListingHandler) GetListing(c echo.Context) error {
	listing, err := h.listings.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listing)
}

// UpdateListing godoc
// @Summary Update a listing
// @Description Only the fields present in the body are changed.
// @Tags listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Param listing body model.ListingUpdate true "Fields to change"
// @Success 200 {object} model.Listing
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /listings/{id} [put]
func (h *ListingHandler) UpdateListing(c echo.Context) error {
	var patch model.ListingUpdate
	if err := c.Bind(&patch); err != nil {
		return apperrors.Validation("Invalid request body")
	}

	listing, err := h.listings.Update(c.Request().Context(), auth.CallerFrom(c), c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listing)
}

// DeleteListing godoc
// @Summary Delete a listing
// @Tags listings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Success 200 {string} string "Listing has been deleted!"
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /listings/{id} [delete]
func (h *ListingHandler) DeleteListing(c echo.Context) error {
	if err := h.listings.Delete(c.Request().Context(), auth.CallerFrom(c), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, "Listing has been deleted!")
}

// SearchListings godoc
// @Summary Search listings
// @Tags listings
// @Produce json
// @Param searchTerm query string false "Matches name, description or address"
// @Param type query string false "rent, sale or all"
// @Param parking query bool false "Only listings with parking"
// @Param furnished query bool false "Only furnished listings"
// @Param offer query bool false "Only listings on offer"
// @Param sort query string false "createdAt, updatedAt, regularPrice, discountPrice, name, bedrooms or bathrooms"
// @Param order query string false "asc or desc"
// @Param limit query int false "Page size (default 9)"
// @Param startIndex query int false "Offset"
// @Success 200 {array} model.Listing
// @Failure 400 {object} errors.ErrorResponse
// @Router /listings [get]
func (h *ListingHandler) SearchListings(c echo.Context) error {
	listings, err := h.listings.Search(c.Request().Context(), model.ParseListingQuery(c.QueryParams()))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listings)
}

// ListOwnerListings godoc
// @Summary List the caller's own listings
// @Tags listings
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID (must be the caller)"
// @Success 200 {array} model.Listing
// @Failure 401 {object} errors.ErrorResponse
// @Router /listings/user/{userId} [get]
func (h *ListingHandler) ListOwnerListings(c echo.Context) error {
	listings, err := h.listings.ListByOwner(c.Request().Context(), auth.CallerFrom(c), c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listings)
}
