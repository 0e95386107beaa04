package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListingType is the kind of deal a listing offers.
type ListingType string

const (
	ListingTypeRent ListingType = "rent"
	ListingTypeSale ListingType = "sale"
)

// MaxListingImages caps the number of images attached to a listing.
const MaxListingImages = 10

// Listing is a property put up for rent or sale. The first image is the cover.
type Listing struct {
	ID            string      `json:"id" bson:"_id" gorm:"primaryKey;size:36"`
	Name          string      `json:"name" bson:"name" gorm:"size:255;not null;index" validate:"required"`
	Description   string      `json:"description" bson:"description" gorm:"type:text;not null" validate:"required"`
	Address       string      `json:"address" bson:"address" gorm:"size:512;not null" validate:"required"`
	RegularPrice  float64     `json:"regularPrice" bson:"regularPrice" gorm:"not null;index" validate:"required,gt=0"`
	DiscountPrice float64     `json:"discountPrice" bson:"discountPrice" gorm:"not null;default:0" validate:"gte=0"`
	Bathrooms     int         `json:"bathrooms" bson:"bathrooms" gorm:"not null" validate:"required,min=1"`
	Bedrooms      int         `json:"bedrooms" bson:"bedrooms" gorm:"not null" validate:"required,min=1"`
	Furnished     bool        `json:"furnished" bson:"furnished" gorm:"not null;default:false;index"`
	Parking       bool        `json:"parking" bson:"parking" gorm:"not null;default:false;index"`
	Type          ListingType `json:"type" bson:"type" gorm:"size:16;not null;index" validate:"required,oneof=rent sale"`
	Offer         bool        `json:"offer" bson:"offer" gorm:"not null;default:false;index"`
	ImageURLs     []string    `json:"imageUrls" bson:"imageUrls" gorm:"serializer:json;type:longtext" validate:"required,min=1,max=10"`
	OwnerRef      string      `json:"ownerRef" bson:"ownerRef" gorm:"size:36;not null;index"`
	CreatedAt     time.Time   `json:"createdAt" bson:"createdAt" gorm:"index"`
	UpdatedAt     time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// BeforeCreate sets a UUID before creating the record.
func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// ListingInput is the client supplied part of a listing on create.
type ListingInput struct {
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Address       string      `json:"address"`
	RegularPrice  float64     `json:"regularPrice"`
	DiscountPrice float64     `json:"discountPrice"`
	Bathrooms     int         `json:"bathrooms"`
	Bedrooms      int         `json:"bedrooms"`
	Furnished     bool        `json:"furnished"`
	Parking       bool        `json:"parking"`
	Type          ListingType `json:"type"`
	Offer         bool        `json:"offer"`
	ImageURLs     []string    `json:"imageUrls"`
}

// NewListing builds a listing owned by ownerRef from the input. Text fields
// are trimmed, so blank ones fail the required rule.
func (in ListingInput) NewListing(ownerRef string) *Listing {
	return &Listing{
		Name:          strings.TrimSpace(in.Name),
		Description:   strings.TrimSpace(in.Description),
		Address:       strings.TrimSpace(in.Address),
		RegularPrice:  in.RegularPrice,
		DiscountPrice: in.DiscountPrice,
		Bathrooms:     in.Bathrooms,
		Bedrooms:      in.Bedrooms,
		Furnished:     in.Furnished,
		Parking:       in.Parking,
		Type:          in.Type,
		Offer:         in.Offer,
		ImageURLs:     in.ImageURLs,
		OwnerRef:      ownerRef,
	}
}

// ListingUpdate is a partial update. Nil fields keep their stored value.
// The owner is not part of it.
type ListingUpdate struct {
	Name          *string      `json:"name"`
	Description   *string      `json:"description"`
	Address       *string      `json:"address"`
	RegularPrice  *float64     `json:"regularPrice"`
	DiscountPrice *float64     `json:"discountPrice"`
	Bathrooms     *int         `json:"bathrooms"`
	Bedrooms      *int         `json:"bedrooms"`
	Furnished     *bool        `json:"furnished"`
	Parking       *bool        `json:"parking"`
	Type          *ListingType `json:"type"`
	Offer         *bool        `json:"offer"`
	ImageURLs     []string     `json:"imageUrls"`
}

// Apply returns a copy of l with the provided fields replaced.
func (u ListingUpdate) Apply(l Listing) Listing {
	if u.Name != nil {
		l.Name = strings.TrimSpace(*u.Name)
	}
	if u.Description != nil {
		l.Description = strings.TrimSpace(*u.Description)
	}
	if u.Address != nil {
		l.Address = strings.TrimSpace(*u.Address)
	}
	if u.RegularPrice != nil {
		l.RegularPrice = *u.RegularPrice
	}
	if u.DiscountPrice != nil {
		l.DiscountPrice = *u.DiscountPrice
	}
	if u.Bathrooms != nil {
		l.Bathrooms = *u.Bathrooms
	}
	if u.Bedrooms != nil {
		l.Bedrooms = *u.Bedrooms
	}
	if u.Furnished != nil {
		l.Furnished = *u.Furnished
	}
	if u.Parking != nil {
		l.Parking = *u.Parking
	}
	if u.Type != nil {
		l.Type = *u.Type
	}
	if u.Offer != nil {
		l.Offer = *u.Offer
	}
	if u.ImageURLs != nil {
		l.ImageURLs = append(make([]string, 0, len(u.ImageURLs)), u.ImageURLs...)
	}
	return l
}
