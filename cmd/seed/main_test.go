package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "estate/internal/errors"
	"estate/internal/model"
	"estate/internal/repository"
	"estate/internal/service"
)

type fakeAuth struct {
	service.AuthService
	existing map[string]bool
}

func (f *fakeAuth) Register(_ context.Context, username, email, _ string) (*model.User, error) {
	if f.existing[email] {
		return nil, apperrors.ErrUserAlreadyExists
	}
	return &model.User{ID: "new-" + username, Username: username, Email: email}, nil
}

type fakeListings struct {
	service.ListingService
	created []model.Listing
}

func (f *fakeListings) Create(_ context.Context, caller model.Caller, in model.ListingInput) (*model.Listing, error) {
	if in.Name == "" {
		return nil, apperrors.Validation("All fields are required!")
	}
	l := in.NewListing(caller.ID)
	f.created = append(f.created, *l)
	return l, nil
}

type fakeUsers struct {
	repository.UserRepository
}

func (fakeUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return &model.User{ID: "old-1", Email: email}, nil
}

func TestSeed(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	fixtures := &Fixtures{Users: []FixtureUser{
		{Username: "ann", Email: "ann@example.com", Password: "secret1", Listings: []model.ListingInput{{Name: "Loft"}, {Name: ""}}},
		{Username: "bob", Email: "bob@example.com", Password: "secret2", Listings: []model.ListingInput{{Name: "Villa"}}},
	}}
	listings := &fakeListings{}

	stats, err := seed(context.Background(), fixtures, &fakeAuth{existing: map[string]bool{"bob@example.com": true}}, listings, fakeUsers{}, log)
	require.NoError(t, err)

	assert.Equal(t, seedStats{usersCreated: 1, usersReused: 1, listingsCreated: 2, skipped: 1}, stats)
	require.Len(t, listings.created, 2)
	assert.Equal(t, "new-ann", listings.created[0].OwnerRef)
	assert.Equal(t, "old-1", listings.created[1].OwnerRef)
}

func TestLoadFixtures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"users":[{"username":"ann","email":"ann@example.com","password":"secret1","listings":[{"name":"Loft","type":"rent","imageUrls":["a"]}]}]}`), 0o600))

	fixtures, err := loadFixtures(path)
	require.NoError(t, err)
	require.Len(t, fixtures.Users, 1)
	assert.Equal(t, model.ListingTypeRent, fixtures.Users[0].Listings[0].Type)

	_, err = loadFixtures(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
