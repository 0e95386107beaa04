package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"estate/internal/cache"
	apperrors "estate/internal/errors"
	"estate/internal/model"
	"estate/internal/repository"
)

const listingCacheTTL = 5 * time.Minute

// ListingService handles listing reads and owner-checked mutations.
type ListingService interface {
	Create(ctx context.Context, caller model.Caller, input model.ListingInput) (*model.Listing, error)
	Get(ctx context.Context, id string) (*model.Listing, error)
	Update(ctx context.Context, caller model.Caller, id string, patch model.ListingUpdate) (*model.Listing, error)
	Delete(ctx context.Context, caller model.Caller, id string) error
	Search(ctx context.Context, q model.ListingQuery) ([]model.Listing, error)
	ListByOwner(ctx context.Context, caller model.Caller, ownerID string) ([]model.Listing, error)
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}

type listingService struct {
	repo  repository.ListingRepository
	cache *cache.Client
}

// NewListingService creates a new listing service. cache may be nil.
func NewListingService(repo repository.ListingRepository, cache *cache.Client) ListingService {
	return &listingService{repo: repo, cache: cache}
}

func (s *listingService) cacheKey(id string) string {
	return fmt.Sprintf("listing:%s", id)
}

// Create validates the input and stores it as a listing owned by the caller.
func (s *listingService) Create(ctx context.Context, caller model.Caller, input model.ListingInput) (*model.Listing, error) {
	if !caller.Authenticated() {
		return nil, apperrors.Unauthorized("Unauthorized")
	}

	listing := input.NewListing(caller.ID)
	if err := validateListing(listing); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	return listing, nil
}

// Get returns a listing by id, served from cache when possible.
func (s *listingService) Get(ctx context.Context, id string) (*model.Listing, error) {
	var cached model.Listing
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	listing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, s.cacheKey(id), listing, listingCacheTTL)
	return listing, nil
}

// Update merges the patch into the stored listing. Existence is checked before
// ownership, so a missing listing is a 404 for everyone.
func (s *listingService) Update(ctx context.Context, caller model.Caller, id string, patch model.ListingUpdate) (*model.Listing, error) {
	stored, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Is(stored.OwnerRef) {
		return nil, apperrors.Forbidden("You can only update your own listings!")
	}

	merged := patch.Apply(*stored)
	if err := validateListing(&merged); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, &merged); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrListingNotFound
		}
		return nil, fmt.Errorf("update listing: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))

	return &merged, nil
}

// Delete removes a listing owned by the caller.
func (s *listingService) Delete(ctx context.Context, caller model.Caller, id string) error {
	stored, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !caller.Is(stored.OwnerRef) {
		return apperrors.Forbidden("You can only delete your own listings!")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrListingNotFound
		}
		return fmt.Errorf("delete listing: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

// Search runs a listing query. An unknown sort field is rejected instead of
// being passed to the store.
func (s *listingService) Search(ctx context.Context, q model.ListingQuery) ([]model.Listing, error) {
	q = q.Normalize()
	if !q.ValidSort() {
		return nil, apperrors.Validation(fmt.Sprintf("Invalid sort field: %s", q.Sort))
	}

	listings, err := s.repo.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}
	if listings == nil {
		listings = []model.Listing{}
	}
	return listings, nil
}

// ListByOwner returns the caller's own listings.
func (s *listingService) ListByOwner(ctx context.Context, caller model.Caller, ownerID string) ([]model.Listing, error) {
	if !caller.Is(ownerID) {
		return nil, apperrors.Unauthorized("You can only view your own listings!")
	}

	listings, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list listings of %s: %w", ownerID, err)
	}
	if listings == nil {
		listings = []model.Listing{}
	}
	return listings, nil
}

// DeleteByOwner removes every listing of a user and drops them from cache.
// Authorization is up to the caller.
func (s *listingService) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	owned, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("list listings of %s: %w", ownerID, err)
	}

	deleted, err := s.repo.DeleteByOwner(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete listings of %s: %w", ownerID, err)
	}

	keys := make([]string, 0, len(owned))
	for _, l := range owned {
		keys = append(keys, s.cacheKey(l.ID))
	}
	_ = s.cache.Delete(ctx, keys...)
	return deleted, nil
}

func (s *listingService) find(ctx context.Context, id string) (*model.Listing, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrListingNotFound
		}
		return nil, fmt.Errorf("find listing %s: %w", id, err)
	}
	return listing, nil
}
