package auth

import (
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "estate/internal/errors"
	"estate/internal/model"
)

const (
	// AccessTokenCookie holds the access token for browser clients.
	AccessTokenCookie = "access_token"
	// RefreshTokenCookie holds the refresh token for browser clients.
	RefreshTokenCookie = "refresh_token"

	tokenContextKey  = "user"
	callerContextKey = "caller"
)

// JWTMiddleware validates the access token from the Authorization header or
// the access_token cookie.
func JWTMiddleware(jwtService *JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:  jwtService.Secret(),
		ContextKey:  tokenContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ,cookie:" + AccessTokenCookie,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.Unauthorized("Unauthorized")
		},
	})
}

// CallerMiddleware turns validated claims into a model.Caller. It rejects
// refresh tokens and access tokens that were revoked on signout or account
// deletion.
// It must run after JWTMiddleware.
func CallerMiddleware(tokenStore TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get(tokenContextKey).(*jwt.Token)
			if !ok {
				return apperrors.Unauthorized("Unauthorized")
			}
			claims, ok := token.Claims.(*Claims)
			if !ok || claims.UserID == "" || claims.TokenType != TokenTypeAccess {
				return apperrors.Unauthorized("Unauthorized")
			}

			if claims.ID != "" {
				revoked, err := tokenStore.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID)
				if err != nil {
					return err
				}
				if revoked {
					return apperrors.Unauthorized("Unauthorized")
				}
			}

			WithCaller(c, CallerFromClaims(claims))
			return next(c)
		}
	}
}

// CallerFrom returns the authenticated caller of the request, or the zero
// Caller on public routes.
func CallerFrom(c echo.Context) model.Caller {
	caller, _ := c.Get(callerContextKey).(model.Caller)
	return caller
}

// WithCaller stores the caller on the echo context.
func WithCaller(c echo.Context, caller model.Caller) {
	c.Set(callerContextKey, caller)
}

// CallerFromClaims builds the caller identified by validated claims.
func CallerFromClaims(claims *Claims) model.Caller {
	caller := model.Caller{
		ID:      claims.UserID,
		Email:   claims.Email,
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		caller.ExpiresAt = claims.ExpiresAt.Time
	}
	return caller
}
