package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	_ "estate/docs" // swagger docs

	"estate/internal/app"
	"estate/internal/auth"
	"estate/internal/cache"
	"estate/internal/config"
	"estate/internal/handler"
	"estate/internal/logger"
	"estate/internal/router"
	"estate/internal/service"
)

// @title Estate API
// @version 1.0
// @description Real-estate listings with user accounts, image uploads and JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("database init")
	}
	defer closeStore()

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, log)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		log.WithError(err).Warn("redis unreachable, continuing without cache")
	}

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	listingService := service.NewListingService(repos.Listings, cacheClient)
	userService := service.NewUserService(repos.Users, listingService, cacheClient)
	authService := service.NewAuthService(repos.Users, jwtService, tokenStore)
	imageService := service.NewImageService(repos.Images)

	// Initialize handlers
	cookies := handler.CookieOptions{Secure: cfg.CookieSecure}
	handlers := router.Handlers{
		Listings: handler.NewListingHandler(listingService),
		Users:    handler.NewUserHandler(userService, authService, cookies),
		Auth:     handler.NewAuthHandler(authService, cookies),
		Images:   handler.NewImageHandler(imageService),
	}

	e := echo.New()
	router.Register(e, cfg, log, handlers, jwtService, tokenStore)

	addr := ":" + cfg.ServerPort
	go func() {
		log.WithField("addr", addr).Info("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server start")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
}
