package service

import (
	"errors"

	"github.com/go-playground/validator/v10"

	apperrors "estate/internal/errors"
	"estate/internal/model"
)

// Listing validation messages, most general first.
const (
	msgListingFieldsRequired = "All fields are required!"
	msgListingTooManyImages  = "You can only upload up to 10 images per listing"
	msgListingRegularPrice   = "Regular price must be a positive number"
	msgListingRooms          = "Bedrooms and bathrooms must be at least 1"
	msgListingType           = "Type must be either rent or sale"
	msgListingDiscountSign   = "Discount price cannot be negative"
	msgListingDiscountAbove  = "Discount price must be less than regular price"
)

var validate = validator.New()

// validateListing checks a complete listing. Only the most general failure
// is reported, so a form with blanks gets one message instead of several.
func validateListing(l *model.Listing) error {
	if err := validate.Struct(l); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		best, msg := len(fieldErrs)+100, msgListingFieldsRequired
		for _, fe := range fieldErrs {
			if rank, m := listingRuleMessage(fe); rank < best {
				best, msg = rank, m
			}
		}
		return apperrors.Validation(msg)
	}

	if l.Offer && l.DiscountPrice >= l.RegularPrice {
		return apperrors.Validation(msgListingDiscountAbove)
	}
	return nil
}

func listingRuleMessage(fe validator.FieldError) (int, string) {
	switch {
	case fe.Tag() == "required", fe.Field() == "ImageURLs" && fe.Tag() == "min":
		return 0, msgListingFieldsRequired
	case fe.Field() == "ImageURLs":
		return 1, msgListingTooManyImages
	case fe.Field() == "RegularPrice":
		return 2, msgListingRegularPrice
	case fe.Field() == "Bathrooms", fe.Field() == "Bedrooms":
		return 3, msgListingRooms
	case fe.Field() == "Type":
		return 4, msgListingType
	case fe.Field() == "DiscountPrice":
		return 5, msgListingDiscountSign
	}
	return 6, msgListingFieldsRequired
}

func validateUserUpdate(u *model.UserUpdate) error {
	err := validate.Struct(u)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	switch fieldErrs[0].Field() {
	case "Email":
		return apperrors.Validation("Invalid email address")
	case "Password":
		return apperrors.Validation("Password must be at least 6 characters")
	default:
		return apperrors.Validation("Username must be between 1 and 255 characters")
	}
}
