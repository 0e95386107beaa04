package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"estate/internal/auth"
	"estate/internal/config"
	apperrors "estate/internal/errors"
	"estate/internal/handler"
	"estate/internal/model"
	"estate/internal/router"
	"estate/internal/service"
)

type testServer struct {
	e        *echo.Echo
	jwt      *auth.JWTService
	listings *MockListingService
	users    *MockUserService
	auth     *MockAuthService
	images   *MockImageService
	logs     *test.Hook
}

func newTestServer() *testServer {
	log, hook := test.NewNullLogger()

	s := &testServer{
		logs:     hook,
		e:        echo.New(),
		jwt:      auth.NewJWTService("test-secret"),
		listings: new(MockListingService),
		users:    new(MockUserService),
		auth:     new(MockAuthService),
		images:   new(MockImageService),
	}
	cookies := handler.CookieOptions{}
	router.Register(s.e, &config.Config{CORSOrigins: []string{"*"}}, log, router.Handlers{
		Listings: handler.NewListingHandler(s.listings),
		Users:    handler.NewUserHandler(s.users, s.auth, cookies),
		Auth:     handler.NewAuthHandler(s.auth, cookies),
		Images:   handler.NewImageHandler(s.images),
	}, s.jwt, auth.NewTokenStore(nil))
	return s
}

func (s *testServer) token(t *testing.T, userID string) string {
	t.Helper()
	_, token, err := s.jwt.GenerateAccessToken(userID, userID+"@example.com")
	require.NoError(t, err)
	return token
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body, token string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func callerIs(id string) interface{} {
	return mock.MatchedBy(func(c model.Caller) bool { return c.ID == id && c.TokenID != "" })
}

func TestSearchListings(t *testing.T) {
	s := newTestServer()
	s.listings.On("Search", mock.Anything, mock.MatchedBy(func(q model.ListingQuery) bool {
		return q.Type == "rent" && q.Limit == 4 && q.Offer && !q.Parking
	})).Return([]model.Listing{}, nil)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/listings?type=rent&limit=4&offer=true&parking=false", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	s.listings.AssertExpectations(t)
}

func TestSearchListingsBadSort(t *testing.T) {
	s := newTestServer()
	s.listings.On("Search", mock.Anything, mock.Anything).Return(nil, apperrors.Validation("Invalid sort field: secret"))

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/listings?sort=secret", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid sort field: secret", resp.Message)
}

func TestCreateListing(t *testing.T) {
	body := `{"name":"Loft","description":"Nice","address":"1 Main St","regularPrice":50000,"discountPrice":60000,
		"bathrooms":1,"bedrooms":1,"type":"sale","offer":true,"imageUrls":["a.jpg"],"ownerRef":"spoofed"}`

	t.Run("requires a token", func(t *testing.T) {
		s := newTestServer()
		rec := s.do(jsonRequest(http.MethodPost, "/api/listings", body, ""))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, apperrors.CodeUnauthorized, decodeError(t, rec).Code)
		s.listings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("validation error envelope", func(t *testing.T) {
		s := newTestServer()
		s.listings.On("Create", mock.Anything, callerIs("u1"), mock.MatchedBy(func(in model.ListingInput) bool {
			return in.RegularPrice == 50000 && in.DiscountPrice == 60000 && in.Offer
		})).Return(nil, apperrors.Validation("Discount price must be less than regular price"))

		rec := s.do(jsonRequest(http.MethodPost, "/api/listings", body, s.token(t, "u1")))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Discount price must be less than regular price", decodeError(t, rec).Message)
	})

	t.Run("created", func(t *testing.T) {
		s := newTestServer()
		s.listings.On("Create", mock.Anything, callerIs("u1"), mock.Anything).
			Return(&model.Listing{ID: "l1", Name: "Loft", OwnerRef: "u1"}, nil)

		rec := s.do(jsonRequest(http.MethodPost, "/api/listings", body, s.token(t, "u1")))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"ownerRef":"u1"`)
	})

	t.Run("malformed body", func(t *testing.T) {
		s := newTestServer()
		rec := s.do(jsonRequest(http.MethodPost, "/api/listings", `{"regularPrice":"cheap"}`, s.token(t, "u1")))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request body", decodeError(t, rec).Message)
	})
}

func TestUpdateAndDeleteListingOwnership(t *testing.T) {
	s := newTestServer()
	s.listings.On("Update", mock.Anything, callerIs("intruder"), "l1", mock.Anything).
		Return(nil, apperrors.Forbidden("You can only update your own listings!"))
	s.listings.On("Delete", mock.Anything, callerIs("intruder"), "l1").
		Return(apperrors.Forbidden("You can only delete your own listings!"))
	s.listings.On("Delete", mock.Anything, callerIs("u1"), "missing").Return(apperrors.ErrListingNotFound)
	s.listings.On("Delete", mock.Anything, callerIs("u1"), "l1").Return(nil)

	intruder := s.token(t, "intruder")

	rec := s.do(jsonRequest(http.MethodPut, "/api/listings/l1", `{"name":"Mine now"}`, intruder))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "You can only update your own listings!", decodeError(t, rec).Message)

	rec = s.do(jsonRequest(http.MethodDelete, "/api/listings/l1", "", intruder))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(jsonRequest(http.MethodDelete, "/api/listings/missing", "", s.token(t, "u1")))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Listing not found!", decodeError(t, rec).Message)

	rec = s.do(jsonRequest(http.MethodDelete, "/api/listings/l1", "", s.token(t, "u1")))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"Listing has been deleted!"`, rec.Body.String())
}

func TestUpdateListingPassesOnlyPresentFields(t *testing.T) {
	s := newTestServer()
	s.listings.On("Update", mock.Anything, callerIs("u1"), "l1", mock.MatchedBy(func(p model.ListingUpdate) bool {
		return p.Name != nil && *p.Name == "Renamed" && p.RegularPrice == nil && p.ImageURLs == nil
	})).Return(&model.Listing{ID: "l1", Name: "Renamed"}, nil)

	rec := s.do(jsonRequest(http.MethodPut, "/api/listings/l1", `{"name":"Renamed"}`, s.token(t, "u1")))

	assert.Equal(t, http.StatusOK, rec.Code)
	s.listings.AssertExpectations(t)
}

func TestOwnerListingRoutes(t *testing.T) {
	s := newTestServer()
	s.listings.On("ListByOwner", mock.Anything, callerIs("u1"), "u2").
		Return(nil, apperrors.Unauthorized("You can only view your own listings!"))
	s.users.On("ListUserListings", mock.Anything, callerIs("u1"), "u1").Return([]model.Listing{{ID: "l1"}}, nil)

	rec := s.do(jsonRequest(http.MethodGet, "/api/listings/user/u2", "", s.token(t, "u1")))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(jsonRequest(http.MethodGet, "/api/users/u1/listings", "", s.token(t, "u1")))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"l1"`)
}

func TestGetUserHidesPassword(t *testing.T) {
	s := newTestServer()
	s.users.On("GetUser", mock.Anything, "u1").Return(&model.User{ID: "u1", Username: "ann", PasswordHash: "$2a$10$hash"}, nil)
	s.users.On("GetUser", mock.Anything, "ghost").Return(nil, apperrors.ErrUserNotFound)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/users/u1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hash")

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/users/ghost", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found!", decodeError(t, rec).Message)
}

func TestDeleteUserClearsSession(t *testing.T) {
	s := newTestServer()
	token := s.token(t, "u1")
	s.users.On("DeleteUser", mock.Anything, callerIs("u1"), "u1").Return(nil)
	s.auth.On("Logout", mock.Anything, token, "").Return(nil)

	rec := s.do(jsonRequest(http.MethodDelete, "/api/users/u1", "", token))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"User has been deleted!"`, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		assert.Empty(t, c.Value)
		assert.True(t, c.MaxAge < 0)
	}
	s.auth.AssertExpectations(t)
}

func TestDeleteUserLogsFailedRevoke(t *testing.T) {
	s := newTestServer()
	token := s.token(t, "u1")
	s.users.On("DeleteUser", mock.Anything, callerIs("u1"), "u1").Return(nil)
	s.auth.On("Logout", mock.Anything, token, "").Return(errors.New("redis down"))

	rec := s.do(jsonRequest(http.MethodDelete, "/api/users/u1", "", token))

	assert.Equal(t, http.StatusOK, rec.Code)
	var revokeEntry *logrus.Entry
	for _, entry := range s.logs.AllEntries() {
		if entry.Message == "revoke tokens after account deletion failed" {
			revokeEntry = entry
		}
	}
	require.NotNil(t, revokeEntry)
	assert.Equal(t, logrus.WarnLevel, revokeEntry.Level)
	assert.Equal(t, "u1", revokeEntry.Data["user_id"])
	assert.EqualError(t, revokeEntry.Data[logrus.ErrorKey].(error), "redis down")
}

func TestDeleteOtherUserIsUnauthorized(t *testing.T) {
	s := newTestServer()
	s.users.On("DeleteUser", mock.Anything, callerIs("u1"), "u2").
		Return(apperrors.Unauthorized("You can delete only your own account!"))

	rec := s.do(jsonRequest(http.MethodDelete, "/api/users/u2", "", s.token(t, "u1")))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "You can delete only your own account!", decodeError(t, rec).Message)
	s.auth.AssertNotCalled(t, "Logout", mock.Anything, mock.Anything, mock.Anything)
}

func TestSignup(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(m *MockAuthService)
		wantStatus int
		wantMsg    string
	}{
		{
			name: "created",
			body: `{"username":"ann","email":"ann@example.com","password":"secret1"}`,
			setup: func(m *MockAuthService) {
				m.On("Register", mock.Anything, "ann", "ann@example.com", "secret1").Return(&model.User{ID: "u1", Username: "ann"}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{name: "missing field", body: `{"email":"ann@example.com","password":"secret1"}`, wantStatus: http.StatusBadRequest, wantMsg: "All fields are required!"},
		{name: "bad email", body: `{"username":"ann","email":"nope","password":"secret1"}`, wantStatus: http.StatusBadRequest, wantMsg: "Invalid email address"},
		{name: "short password", body: `{"username":"ann","email":"ann@example.com","password":"123"}`, wantStatus: http.StatusBadRequest, wantMsg: "Password must be at least 6 characters"},
		{
			name: "duplicate",
			body: `{"username":"ann","email":"ann@example.com","password":"secret1"}`,
			setup: func(m *MockAuthService) {
				m.On("Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, apperrors.ErrUserAlreadyExists)
			},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			if tt.setup != nil {
				tt.setup(s.auth)
			}

			rec := s.do(jsonRequest(http.MethodPost, "/api/auth/signup", tt.body, ""))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, decodeError(t, rec).Message)
			}
		})
	}
}

func TestSigninSetsCookies(t *testing.T) {
	s := newTestServer()
	s.auth.On("Login", mock.Anything, "ann@example.com", "secret1").
		Return(service.Tokens{AccessToken: "access", RefreshToken: "refresh"}, &model.User{ID: "u1"}, nil)

	rec := s.do(jsonRequest(http.MethodPost, "/api/auth/signin", `{"email":"ann@example.com","password":"secret1"}`, ""))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "access", resp.AccessToken)
	assert.Equal(t, "u1", resp.User.ID)

	values := map[string]string{}
	for _, c := range rec.Result().Cookies() {
		assert.True(t, c.HttpOnly)
		values[c.Name] = c.Value
	}
	assert.Equal(t, map[string]string{auth.AccessTokenCookie: "access", auth.RefreshTokenCookie: "refresh"}, values)
}

func TestSigninBadCredentials(t *testing.T) {
	s := newTestServer()
	s.auth.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(service.Tokens{}, nil, apperrors.ErrInvalidCredentials)

	rec := s.do(jsonRequest(http.MethodPost, "/api/auth/signin", `{"email":"ann@example.com","password":"wrong"}`, ""))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshFromCookie(t *testing.T) {
	s := newTestServer()
	s.auth.On("RefreshToken", mock.Anything, "refresh-cookie").Return("new-access", nil)

	req := jsonRequest(http.MethodPost, "/api/auth/refresh", `{}`, "")
	req.AddCookie(&http.Cookie{Name: auth.RefreshTokenCookie, Value: "refresh-cookie"})
	rec := s.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"accessToken":"new-access"`)

	rec = s.do(jsonRequest(http.MethodPost, "/api/auth/refresh", `{}`, ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignout(t *testing.T) {
	s := newTestServer()
	s.auth.On("Logout", mock.Anything, "", "").Return(nil)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/auth/signout", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"User has been logged out!"`, rec.Body.String())
	assert.Len(t, rec.Result().Cookies(), 2)
}

func TestUploadAndServeImage(t *testing.T) {
	s := newTestServer()
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	s.images.On("Upload", mock.Anything, callerIs("u1"), "cover.png", mock.Anything).
		Return(&model.Image{ID: "img1"}, nil)
	s.images.On("Get", mock.Anything, "img1").Return(&model.Image{ID: "img1", ContentType: "image/png", Data: png}, nil)
	s.images.On("Get", mock.Anything, "nope").Return(nil, apperrors.ErrImageNotFound)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("image", "cover.png")
	require.NoError(t, err)
	_, err = part.Write(png)
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/images", &body)
	req.Header.Set(echo.HeaderContentType, form.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+s.token(t, "u1"))
	rec := s.do(req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":"img1","url":"/api/images/img1"}`, rec.Body.String())

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/images/img1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, png, rec.Body.Bytes())

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/images/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadWithoutFile(t *testing.T) {
	s := newTestServer()
	rec := s.do(jsonRequest(http.MethodPost, "/api/images", `{}`, s.token(t, "u1")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Image is required", decodeError(t, rec).Message)
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	s := newTestServer()
	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/nowhere", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, apperrors.CodeNotFound, resp.Code)
	assert.Equal(t, "Not Found", resp.Message)
}

func TestHealthz(t *testing.T) {
	s := newTestServer()
	rec := s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
