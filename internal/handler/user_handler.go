package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"estate/internal/auth"
	apperrors "estate/internal/errors"
	"estate/internal/logger"
	"estate/internal/model"
	"estate/internal/service"
)

// UserHandler bundles profile handlers.
type UserHandler struct {
	users   service.UserService
	auth    service.AuthService
	cookies CookieOptions
}

// NewUserHandler creates a handler layer.
func NewUserHandler(users service.UserService, authService service.AuthService, cookies CookieOptions) *UserHandler {
	return &UserHandler{users: users, auth: authService, cookies: cookies}
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} model.User
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.users.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUser godoc
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID (must be the caller)"
// @Param user body model.UserUpdate true "Fields to change"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	var patch model.UserUpdate
	if err := c.Bind(&patch); err != nil {
		return apperrors.Validation("Invalid request body")
	}

	user, err := h.users.UpdateUser(c.Request().Context(), auth.CallerFrom(c), c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser godoc
// @Summary Delete own account
// @Description Deletes the account and every listing it owns, then signs the caller out.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID (must be the caller)"
// @Success 200 {string} string "User has been deleted!"
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.users.DeleteUser(ctx, auth.CallerFrom(c), c.Param("id")); err != nil {
		return err
	}
	// The account is already gone; a failed revoke must not report otherwise.
	if err := h.auth.Logout(ctx, accessTokenFrom(c), cookieValue(c, auth.RefreshTokenCookie)); err != nil {
		logger.FromContext(c).WithError(err).WithField("user_id", c.Param("id")).
			Warn("revoke tokens after account deletion failed")
	}
	h.cookies.clear(c)

	return c.JSON(http.StatusOK, "User has been deleted!")
}

// ListUserListings godoc
// @Summary List the caller's own listings
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID (must be the caller)"
// @Success 200 {array} model.Listing
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/{id}/listings [get]
func (h *UserHandler) ListUserListings(c echo.Context) error {
	listings, err := h.users.ListUserListings(c.Request().Context(), auth.CallerFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listings)
}
