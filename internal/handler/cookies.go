package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"estate/internal/auth"
)

// CookieOptions controls the auth cookies handed to browser clients.
type CookieOptions struct {
	Secure bool
}

func (o CookieOptions) set(c echo.Context, name, value string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (o CookieOptions) clear(c echo.Context) {
	for _, name := range []string{auth.AccessTokenCookie, auth.RefreshTokenCookie} {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   o.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// accessTokenFrom reads the access token the same way the JWT middleware does.
func accessTokenFrom(c echo.Context) string {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return cookieValue(c, auth.AccessTokenCookie)
}

func cookieValue(c echo.Context, name string) string {
	cookie, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
