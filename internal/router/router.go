package router

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"

	"estate/docs"
	"estate/internal/auth"
	"estate/internal/config"
	apperrors "estate/internal/errors"
	"estate/internal/handler"
	"estate/internal/logger"
)

// Handlers groups the HTTP handlers served by the API.
type Handlers struct {
	Listings *handler.ListingHandler
	Users    *handler.UserHandler
	Auth     *handler.AuthHandler
	Images   *handler.ImageHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log *logrus.Logger,
	h Handlers,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
) {
	e.HideBanner = true
	e.HTTPErrorHandler = ErrorHandler(log)
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(logger.RequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/signup", h.Auth.Signup)
	api.POST("/auth/signin", h.Auth.Signin)
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.GET("/auth/signout", h.Auth.Signout)
	api.POST("/auth/signout", h.Auth.Signout)

	api.GET("/listings", h.Listings.SearchListings)
	api.GET("/listings/:id", h.Listings.GetListing)
	api.GET("/users/:id", h.Users.GetUser)
	api.GET("/images/:id", h.Images.GetImage)

	// Secured routes (require JWT authentication). The middleware is attached
	// per route: a group with middleware would answer unknown /api paths with 401.
	secured := []echo.MiddlewareFunc{auth.JWTMiddleware(jwtService), auth.CallerMiddleware(tokenStore)}

	api.POST("/listings", h.Listings.CreateListing, secured...)
	api.PUT("/listings/:id", h.Listings.UpdateListing, secured...)
	api.DELETE("/listings/:id", h.Listings.DeleteListing, secured...)
	api.GET("/listings/user/:userId", h.Listings.ListOwnerListings, secured...)

	api.PUT("/users/:id", h.Users.UpdateUser, secured...)
	api.DELETE("/users/:id", h.Users.DeleteUser, secured...)
	api.GET("/users/:id/listings", h.Users.ListUserListings, secured...)

	api.POST("/images", h.Images.UploadImage, append(secured, middleware.BodyLimit("3M"))...)
}

// ErrorHandler is the single place where failed requests are turned into the
// error envelope. Unexpected errors are logged with their cause and reported
// to the client as a bare 500.
func ErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		httpErr := toHTTPError(err)
		if httpErr.StatusCode >= http.StatusInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
				"method":     c.Request().Method,
				"uri":        c.Request().RequestURI,
			}).Error("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(httpErr.StatusCode)
		} else {
			err = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		if err != nil {
			log.WithError(err).Warn("write error response")
		}
	}
}

func toHTTPError(err error) *apperrors.HTTPError {
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		message := http.StatusText(echoErr.Code)
		if msg, ok := echoErr.Message.(string); ok && msg != "" && echoErr.Code < http.StatusInternalServerError {
			message = msg
		}
		return apperrors.NewHTTPError(echoErr.Code, message, apperrors.CodeForStatus(echoErr.Code))
	}
	return apperrors.MapErrorToHTTP(err)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
