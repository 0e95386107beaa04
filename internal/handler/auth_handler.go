package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"estate/internal/auth"
	apperrors "estate/internal/errors"
	"estate/internal/model"
	"estate/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	cookies     CookieOptions
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, cookies CookieOptions) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

// SignupRequest represents a user registration request.
type SignupRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// SigninRequest represents a user login request.
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents a token refresh request. The refresh_token
// cookie is used when the body carries no token.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse represents an authentication response.
type AuthResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken,omitempty"`
	User         *model.User `json:"user,omitempty"`
}

// Signup godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Registration data"
// @Success 201 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// Signin godoc
// @Summary Sign in
// @Description Returns both tokens and also sets them as httpOnly cookies.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SigninRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/signin [post]
func (h *AuthHandler) Signin(c echo.Context) error {
	var req SigninRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tokens, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.cookies.set(c, auth.AccessTokenCookie, tokens.AccessToken, auth.AccessTokenExpiry)
	h.cookies.set(c, auth.RefreshTokenCookie, tokens.RefreshToken, auth.RefreshTokenExpiry)

	return c.JSON(http.StatusOK, AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         user,
	})
}

// Refresh godoc
// @Summary Refresh access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest false "Refresh token"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("Invalid request body")
	}
	if req.RefreshToken == "" {
		req.RefreshToken = cookieValue(c, auth.RefreshTokenCookie)
	}
	if req.RefreshToken == "" {
		return apperrors.Validation("Refresh token is required")
	}

	accessToken, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	h.cookies.set(c, auth.AccessTokenCookie, accessToken, auth.AccessTokenExpiry)
	return c.JSON(http.StatusOK, AuthResponse{AccessToken: accessToken})
}

// Signout godoc
// @Summary Sign out
// @Description Revokes the presented tokens and clears the auth cookies. Always succeeds.
// @Tags auth
// @Produce json
// @Success 200 {string} string "User has been logged out!"
// @Router /auth/signout [get]
// @Router /auth/signout [post]
func (h *AuthHandler) Signout(c echo.Context) error {
	var req RefreshRequest
	_ = c.Bind(&req)
	if req.RefreshToken == "" {
		req.RefreshToken = cookieValue(c, auth.RefreshTokenCookie)
	}

	if err := h.authService.Logout(c.Request().Context(), accessTokenFrom(c), req.RefreshToken); err != nil {
		return err
	}
	h.cookies.clear(c)

	return c.JSON(http.StatusOK, "User has been logged out!")
}
