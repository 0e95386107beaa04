package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"estate/internal/cache"
	apperrors "estate/internal/errors"
	"estate/internal/model"
	"estate/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UserService exposes profile operations. Mutations are self-only.
type UserService interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	UpdateUser(ctx context.Context, caller model.Caller, id string, patch model.UserUpdate) (*model.User, error)
	DeleteUser(ctx context.Context, caller model.Caller, id string) error
	ListUserListings(ctx context.Context, caller model.Caller, id string) ([]model.Listing, error)
}

type userService struct {
	repo     repository.UserRepository
	listings ListingService
	cache    *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, listings ListingService, cache *cache.Client) UserService {
	return &userService{repo: repo, listings: listings, cache: cache}
}

func (s *userService) cacheKey(id string) string {
	return fmt.Sprintf("user:%s", id)
}

func (s *userService) GetUser(ctx context.Context, id string) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}

	// The hash is tagged json:"-", so the cached payload never carries it.
	s.cache.SetJSON(ctx, s.cacheKey(id), user, userCacheTTL)
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, caller model.Caller, id string, patch model.UserUpdate) (*model.User, error) {
	if !caller.Is(id) {
		return nil, apperrors.Unauthorized("You can update only your own account!")
	}
	if err := validateUserUpdate(&patch); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}

	if patch.Username != nil {
		user.Username = strings.TrimSpace(*patch.Username)
	}
	if patch.Email != nil {
		user.Email = normalizeEmail(*patch.Email)
	}
	if patch.Avatar != nil {
		user.Avatar = *patch.Avatar
	}
	if patch.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hashed)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateKey):
			return nil, apperrors.ErrUserAlreadyExists
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))

	return user, nil
}

// DeleteUser removes the caller's account together with all of its listings.
// Listings go first so a failure never leaves listings without an owner.
func (s *userService) DeleteUser(ctx context.Context, caller model.Caller, id string) error {
	if !caller.Is(id) {
		return apperrors.Unauthorized("You can delete only your own account!")
	}

	if _, err := s.listings.DeleteByOwner(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

func (s *userService) ListUserListings(ctx context.Context, caller model.Caller, id string) ([]model.Listing, error) {
	return s.listings.ListByOwner(ctx, caller, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
