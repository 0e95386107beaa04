package repository

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"estate/internal/model"
)

var searchableListingFields = []string{"name", "description", "address"}

// listingSearchFilter translates a query into a Mongo filter document.
func listingSearchFilter(q model.ListingQuery) bson.M {
	filter := bson.M{}

	if q.SearchTerm != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.SearchTerm), Options: "i"}
		or := make(bson.A, 0, len(searchableListingFields))
		for _, field := range searchableListingFields {
			or = append(or, bson.M{field: pattern})
		}
		filter["$or"] = or
	}
	if q.FiltersType() {
		filter["type"] = q.Type
	}
	if q.Parking {
		filter["parking"] = true
	}
	if q.Furnished {
		filter["furnished"] = true
	}
	if q.Offer {
		filter["offer"] = true
	}

	return filter
}

// listingSearchOptions returns sort, skip and limit for a query. _id breaks ties
// so that offset pagination is stable.
func listingSearchOptions(q model.ListingQuery) *options.FindOptions {
	direction := -1
	if q.Order == model.SortAsc {
		direction = 1
	}

	sortField := q.Sort
	if _, ok := model.SortableListingFields[sortField]; !ok {
		sortField = model.DefaultListingSort
	}

	return options.Find().
		SetSort(bson.D{{Key: sortField, Value: direction}, {Key: "_id", Value: direction}}).
		SetSkip(int64(q.StartIndex)).
		SetLimit(int64(q.Limit))
}

// listingSearchScope applies the same query to a GORM statement.
func listingSearchScope(q model.ListingQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.SearchTerm != "" {
			like := "%" + escapeLike(strings.ToLower(q.SearchTerm)) + "%"
			db = db.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(address) LIKE ?)", like, like, like)
		}
		if q.FiltersType() {
			db = db.Where(clause.Eq{Column: clause.Column{Name: "type"}, Value: q.Type})
		}
		if q.Parking {
			db = db.Where("parking = ?", true)
		}
		if q.Furnished {
			db = db.Where("furnished = ?", true)
		}
		if q.Offer {
			db = db.Where("offer = ?", true)
		}

		column, ok := model.SortableListingFields[q.Sort]
		if !ok {
			column = model.SortableListingFields[model.DefaultListingSort]
		}
		desc := q.Order != model.SortAsc

		return db.
			Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc}).
			Offset(q.StartIndex).
			Limit(q.Limit)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
