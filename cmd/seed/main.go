package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"estate/internal/app"
	"estate/internal/auth"
	"estate/internal/cache"
	"estate/internal/config"
	apperrors "estate/internal/errors"
	"estate/internal/logger"
	"estate/internal/model"
	"estate/internal/repository"
	"estate/internal/service"
)

// Fixtures is the seed file layout.
type Fixtures struct {
	Users []FixtureUser `json:"users"`
}

// FixtureUser is a user with the listings they own.
type FixtureUser struct {
	Username string               `json:"username"`
	Email    string               `json:"email"`
	Password string               `json:"password"`
	Listings []model.ListingInput `json:"listings"`
}

type seedStats struct {
	usersCreated    int
	usersReused     int
	listingsCreated int
	skipped         int
}

func main() {
	file := flag.String("file", "fixtures.json", "path to the fixture file")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.Info("starting seed script")

	fixtures, err := loadFixtures(*file)
	if err != nil {
		log.WithError(err).Fatal("load fixtures")
	}

	ctx := context.Background()
	repos, closeStore, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("database init")
	}
	defer closeStore()

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, log)
	defer cacheClient.Close()

	authService := service.NewAuthService(repos.Users, auth.NewJWTService(cfg.JWTSecret), auth.NewTokenStore(cacheClient))
	listingService := service.NewListingService(repos.Listings, cacheClient)

	stats, err := seed(ctx, fixtures, authService, listingService, repos.Users, log)
	if err != nil {
		log.WithError(err).Fatal("seed failed")
	}

	log.WithFields(logrus.Fields{
		"users_created":    stats.usersCreated,
		"users_reused":     stats.usersReused,
		"listings_created": stats.listingsCreated,
		"skipped":          stats.skipped,
	}).Info("seed completed")
}

func loadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var fixtures Fixtures
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &fixtures, nil
}

// seed registers every fixture user and creates their listings through the
// services, so fixtures get the same validation as API requests. Invalid
// entries are logged and skipped; infrastructure errors abort.
func seed(
	ctx context.Context,
	fixtures *Fixtures,
	authService service.AuthService,
	listingService service.ListingService,
	users repository.UserRepository,
	log logrus.FieldLogger,
) (seedStats, error) {
	var stats seedStats

	for _, fu := range fixtures.Users {
		entry := log.WithField("email", fu.Email)

		user, err := authService.Register(ctx, fu.Username, fu.Email, fu.Password)
		switch {
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			user, err = users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(fu.Email)))
			if err != nil {
				return stats, fmt.Errorf("load existing user %s: %w", fu.Email, err)
			}
			stats.usersReused++
		case err != nil:
			return stats, fmt.Errorf("register %s: %w", fu.Email, err)
		default:
			stats.usersCreated++
		}

		owner := model.Caller{ID: user.ID, Email: user.Email}
		for _, input := range fu.Listings {
			if _, err := listingService.Create(ctx, owner, input); err != nil {
				var httpErr *apperrors.HTTPError
				if !errors.As(err, &httpErr) {
					return stats, fmt.Errorf("create listing %q: %w", input.Name, err)
				}
				entry.WithField("listing", input.Name).WithError(err).Warn("skipping invalid listing")
				stats.skipped++
				continue
			}
			stats.listingsCreated++
		}
	}

	return stats, nil
}
