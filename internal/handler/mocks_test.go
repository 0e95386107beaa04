package handler_test

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"estate/internal/model"
	"estate/internal/service"
)

// MockListingService is a mock implementation of ListingService.
type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) Create(ctx context.Context, caller model.Caller, input model.ListingInput) (*model.Listing, error) {
	args := m.Called(ctx, caller, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Listing), args.Error(1)
}

func (m *MockListingService) Get(ctx context.Context, id string) (*model.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Listing), args.Error(1)
}

func (m *MockListingService) Update(ctx context.Context, caller model.Caller, id string, patch model.ListingUpdate) (*model.Listing, error) {
	args := m.Called(ctx, caller, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Listing), args.Error(1)
}

func (m *MockListingService) Delete(ctx context.Context, caller model.Caller, id string) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

func (m *MockListingService) Search(ctx context.Context, q model.ListingQuery) ([]model.Listing, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Listing), args.Error(1)
}

func (m *MockListingService) ListByOwner(ctx context.Context, caller model.Caller, ownerID string) ([]model.Listing, error) {
	args := m.Called(ctx, caller, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Listing), args.Error(1)
}

func (m *MockListingService) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserService is a mock implementation of UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, caller model.Caller, id string, patch model.UserUpdate) (*model.User, error) {
	args := m.Called(ctx, caller, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, caller model.Caller, id string) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

func (m *MockUserService) ListUserListings(ctx context.Context, caller model.Caller, id string) ([]model.Listing, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Listing), args.Error(1)
}

// MockAuthService is a mock implementation of AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	args := m.Called(ctx, username, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (service.Tokens, *model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.Get(0).(service.Tokens), nil, args.Error(2)
	}
	return args.Get(0).(service.Tokens), args.Get(1).(*model.User), args.Error(2)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	args := m.Called(ctx, accessToken, refreshToken)
	return args.Error(0)
}

func (m *MockAuthService) Revoke(ctx context.Context, caller model.Caller) error {
	args := m.Called(ctx, caller)
	return args.Error(0)
}

// MockImageService is a mock implementation of ImageService.
type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) Upload(ctx context.Context, caller model.Caller, filename string, r io.Reader) (*model.Image, error) {
	args := m.Called(ctx, caller, filename, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Image), args.Error(1)
}

func (m *MockImageService) Get(ctx context.Context, id string) (*model.Image, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Image), args.Error(1)
}
