package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"

	"estate/internal/model"
)

// Repositories groups the repositories of one storage backend.
type Repositories struct {
	Listings ListingRepository
	Users    UserRepository
	Images   ImageRepository
}

// NewMongoRepositories builds every repository on a Mongo database.
func NewMongoRepositories(db *mongo.Database) Repositories {
	return Repositories{
		Listings: NewMongoListingRepository(db),
		Users:    NewMongoUserRepository(db),
		Images:   NewGridFSImageRepository(db),
	}
}

// NewGormRepositories builds every repository on a GORM connection.
func NewGormRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Listings: NewListingRepository(db),
		Users:    NewUserRepository(db),
		Images:   NewImageRepository(db),
	}
}

// MigrateGorm creates or updates the relational schema.
func MigrateGorm(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Listing{}, &model.Image{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// ResetGorm drops every table owned by the application.
func ResetGorm(db *gorm.DB) error {
	for _, table := range []interface{}{&model.Image{}, &model.Listing{}, &model.User{}} {
		if err := db.Migrator().DropTable(table); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}

// EnsureMongoIndexes creates the indexes the repositories rely on. The unique
// email index is what turns a second signup into ErrDuplicateKey.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}

	_, err = db.Collection(ListingsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "ownerRef", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "offer", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create listings indexes: %w", err)
	}
	return nil
}

// ResetMongo drops the application collections, including the image bucket.
func ResetMongo(ctx context.Context, db *mongo.Database) error {
	for _, name := range []string{ListingsCollection, UsersCollection, ImagesBucket + ".files", ImagesBucket + ".chunks"} {
		if err := db.Collection(name).Drop(ctx); err != nil {
			var cmdErr mongo.CommandError
			if errors.As(err, &cmdErr) && cmdErr.Name == "NamespaceNotFound" {
				continue
			}
			return fmt.Errorf("drop %s: %w", name, err)
		}
	}
	return nil
}
