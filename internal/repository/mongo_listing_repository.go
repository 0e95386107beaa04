package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"estate/internal/model"
)

// ListingsCollection is the Mongo collection holding listings.
const ListingsCollection = "listings"

type mongoListingRepository struct {
	coll *mongo.Collection
}

// NewMongoListingRepository builds a Mongo-backed listing repository.
func NewMongoListingRepository(db *mongo.Database) ListingRepository {
	return &mongoListingRepository{coll: db.Collection(ListingsCollection)}
}

func (r *mongoListingRepository) Create(ctx context.Context, listing *model.Listing) error {
	now := mongoNow()
	if listing.ID == "" {
		listing.ID = primitive.NewObjectID().Hex()
	}
	listing.CreatedAt = now
	listing.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, listing); err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

func (r *mongoListingRepository) Update(ctx context.Context, listing *model.Listing) error {
	listing.UpdatedAt = mongoNow()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": listing.ID}, listing)
	if err != nil {
		return fmt.Errorf("replace listing %s: %w", listing.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoListingRepository) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	var listing model.Listing
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&listing); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find listing %s: %w", id, err)
	}
	return &listing, nil
}

func (r *mongoListingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete listing %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoListingRepository) Search(ctx context.Context, q model.ListingQuery) ([]model.Listing, error) {
	return r.find(ctx, listingSearchFilter(q), listingSearchOptions(q))
}

func (r *mongoListingRepository) FindByOwner(ctx context.Context, ownerRef string) ([]model.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	return r.find(ctx, bson.M{"ownerRef": ownerRef}, opts)
}

func (r *mongoListingRepository) DeleteByOwner(ctx context.Context, ownerRef string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"ownerRef": ownerRef})
	if err != nil {
		return 0, fmt.Errorf("delete listings of %s: %w", ownerRef, err)
	}
	return res.DeletedCount, nil
}

func (r *mongoListingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.Listing, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find listings: %w", err)
	}

	listings := make([]model.Listing, 0)
	if err := cur.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}
	if listings == nil {
		listings = []model.Listing{}
	}
	return listings, nil
}

// mongoNow truncates to the millisecond precision Mongo stores dates with, so
// a record read back equals the one written.
func mongoNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
