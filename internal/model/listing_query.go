package model

import (
	"net/url"
	"strconv"
	"strings"
)

// Query defaults.
const (
	DefaultListingLimit = 9
	DefaultListingSort  = "createdAt"
	TypeAll             = "all"
)

// SortOrder is the direction of a listing search.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortableListingFields maps the sortable listing fields (document names) to
// their relational column names.
var SortableListingFields = map[string]string{
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
	"regularPrice":  "regular_price",
	"discountPrice": "discount_price",
	"name":          "name",
	"bedrooms":      "bedrooms",
	"bathrooms":     "bathrooms",
}

var sortAliases = map[string]string{
	"created_at":     "createdAt",
	"updated_at":     "updatedAt",
	"regular_price":  "regularPrice",
	"discount_price": "discountPrice",
}

// ListingQuery describes a listing search.
//
// Parking, Furnished and Offer only ever narrow the result: true keeps listings
// where the flag is set, false means no filter. There is no way to ask for
// listings where the flag is unset.
type ListingQuery struct {
	SearchTerm string
	Type       string // "all" or empty disables the filter
	Parking    bool
	Furnished  bool
	Offer      bool
	Sort       string // key of SortableListingFields
	Order      SortOrder
	Limit      int
	StartIndex int
}

// ParseListingQuery reads a search from URL query values. Unparseable numbers
// fall back to their defaults; the returned query always has Sort, Order and
// Limit set. Sort is returned as given (after alias resolution) and checked by
// ValidSort.
func ParseListingQuery(values url.Values) ListingQuery {
	q := ListingQuery{
		SearchTerm: strings.TrimSpace(values.Get("searchTerm")),
		Type:       strings.TrimSpace(values.Get("type")),
		Parking:    values.Get("parking") == "true",
		Furnished:  values.Get("furnished") == "true",
		Offer:      values.Get("offer") == "true",
		Sort:       strings.TrimSpace(values.Get("sort")),
		Order:      SortOrder(strings.ToLower(strings.TrimSpace(values.Get("order")))),
	}
	if n, err := strconv.Atoi(values.Get("limit")); err == nil {
		q.Limit = n
	}
	if n, err := strconv.Atoi(values.Get("startIndex")); err == nil {
		q.StartIndex = n
	}
	return q.Normalize()
}

// Normalize fills defaults in place of empty or out-of-range values.
func (q ListingQuery) Normalize() ListingQuery {
	if q.Type == "" {
		q.Type = TypeAll
	}
	if q.Sort == "" {
		q.Sort = DefaultListingSort
	}
	if alias, ok := sortAliases[q.Sort]; ok {
		q.Sort = alias
	}
	if q.Order != SortAsc {
		q.Order = SortDesc
	}
	if q.Limit <= 0 {
		q.Limit = DefaultListingLimit
	}
	if q.StartIndex < 0 {
		q.StartIndex = 0
	}
	return q
}

// ValidSort reports whether Sort names a sortable listing field.
func (q ListingQuery) ValidSort() bool {
	_, ok := SortableListingFields[q.Sort]
	return ok
}

// FiltersType reports whether the query restricts the listing type.
func (q ListingQuery) FiltersType() bool {
	return q.Type != "" && q.Type != TypeAll
}
