package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"estate/internal/model"
)

// ListingRepository defines listing persistence operations.
type ListingRepository interface {
	Create(ctx context.Context, listing *model.Listing) error
	Update(ctx context.Context, listing *model.Listing) error
	FindByID(ctx context.Context, id string) (*model.Listing, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q model.ListingQuery) ([]model.Listing, error)
	FindByOwner(ctx context.Context, ownerRef string) ([]model.Listing, error)
	DeleteByOwner(ctx context.Context, ownerRef string) (int64, error)
}

type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository builds a GORM-backed repository.
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

// Create creates a new listing.
func (r *listingRepository) Create(ctx context.Context, listing *model.Listing) error {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return fmt.Errorf("create listing: %w", err)
	}
	return nil
}

// Update writes every field of an existing listing.
func (r *listingRepository) Update(ctx context.Context, listing *model.Listing) error {
	if err := r.db.WithContext(ctx).Save(listing).Error; err != nil {
		return fmt.Errorf("update listing %s: %w", listing.ID, err)
	}
	return nil
}

// FindByID finds a listing by ID.
func (r *listingRepository) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	var listing model.Listing
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find listing %s: %w", id, err)
	}
	return &listing, nil
}

// Delete removes a listing by ID.
func (r *listingRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Listing{})
	if res.Error != nil {
		return fmt.Errorf("delete listing %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Search runs a filtered, sorted and paginated listing query.
func (r *listingRepository) Search(ctx context.Context, q model.ListingQuery) ([]model.Listing, error) {
	listings := make([]model.Listing, 0)
	if err := r.db.WithContext(ctx).Scopes(listingSearchScope(q)).Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}
	return listings, nil
}

// FindByOwner lists every listing of one owner, newest first.
func (r *listingRepository) FindByOwner(ctx context.Context, ownerRef string) ([]model.Listing, error) {
	listings := make([]model.Listing, 0)
	if err := r.db.WithContext(ctx).Where("owner_ref = ?", ownerRef).Order("created_at DESC").Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("find listings of %s: %w", ownerRef, err)
	}
	return listings, nil
}

// DeleteByOwner removes every listing of one owner and reports how many were removed.
func (r *listingRepository) DeleteByOwner(ctx context.Context, ownerRef string) (int64, error) {
	res := r.db.WithContext(ctx).Where("owner_ref = ?", ownerRef).Delete(&model.Listing{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete listings of %s: %w", ownerRef, res.Error)
	}
	return res.RowsAffected, nil
}
