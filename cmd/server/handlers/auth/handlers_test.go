package auth

import (
	"context"
	"testing"
	"time"

	"noteshare/cmd/server/middlewares"
	"noteshare/cmd/server/testutil"
	"noteshare/internal/config"
	"noteshare/internal/services/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	signUpEndpoint  = "/api/v1/auth/sign-up"
	signInEndpoint  = "/api/v1/auth/sign-in"
	meEndpoint      = "/api/v1/me"
	profileEndpoint = "/api/v1/profile"
	testEmail       = "test@example.com"
	testPassword    = "Password123"
)

// MockAuthService mocks the auth service
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) SignUp(ctx context.Context, req auth.SignUpRequest) (*auth.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.AuthResponse), args.Error(1)
}

func (m *MockAuthService) SignIn(ctx context.Context, req auth.SignInRequest) (*auth.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Profile(ctx context.Context, userID bson.ObjectID) (*auth.ProfileResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.ProfileResponse), args.Error(1)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, userID bson.ObjectID, req auth.UpdateProfileRequest) (*auth.ProfileResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.ProfileResponse), args.Error(1)
}

// AuthTestSetup contains common test setup data
type AuthTestSetup struct {
	MockService *MockAuthService
	App         *fiber.App
	TestUser    *auth.User
	Token       string
}

// SetupAuthTest wires the handlers the way the router does, including a
// sign-in limiter of two requests per minute.
func SetupAuthTest(t *testing.T) *AuthTestSetup {
	t.Helper()

	mockService := &MockAuthService{}
	app := testutil.CreateTestApp(t)
	h := NewHandlers(mockService, testutil.CreateTestValidator(t))

	jwtMW := middlewares.JWT(config.Config{JWTSecret: testutil.TestSecret})

	v1 := app.Group("/api/v1")
	authGrp := v1.Group("/auth")
	authGrp.Post("/sign-up", h.SignUp)
	authGrp.Post("/sign-in", middlewares.BuildRateLimiter(2, time.Minute), h.SignIn)
	v1.Get("/me", jwtMW, h.Me)
	v1.Get("/profile", jwtMW, h.Profile)
	v1.Patch("/profile", jwtMW, h.UpdateProfile)

	now := time.Now().UTC()
	user := &auth.User{
		ID:        bson.NewObjectID(),
		Username:  "algebra_fan",
		Email:     testEmail,
		CreatedAt: now,
		UpdatedAt: now,
	}

	token, err := testutil.CreateTestJWT(user.ID.Hex(), user.Email, user.Username, []byte(testutil.TestSecret), time.Hour)
	require.NoError(t, err)

	return &AuthTestSetup{MockService: mockService, App: app, TestUser: user, Token: token}
}

func TestSignUp(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]any
		setup      func(*AuthTestSetup)
		wantStatus int
	}{
		{
			name: "created",
			body: map[string]any{"username": "algebra_fan", "email": testEmail, "password": testPassword},
			setup: func(s *AuthTestSetup) {
				s.MockService.On("SignUp", mock.Anything, mock.MatchedBy(func(r auth.SignUpRequest) bool {
					return r.Username == "algebra_fan"
				})).Return(&auth.AuthResponse{User: s.TestUser, Token: "tok"}, nil)
			},
			wantStatus: 201,
		},
		{
			name:       "weak password",
			body:       map[string]any{"username": "algebra_fan", "email": testEmail, "password": "short"},
			wantStatus: 400,
		},
		{
			name:       "bad username",
			body:       map[string]any{"username": "no spaces!", "email": testEmail, "password": testPassword},
			wantStatus: 400,
		},
		{
			name:       "username too long",
			body:       map[string]any{"username": "abcdefghijklmnop", "email": testEmail, "password": testPassword},
			wantStatus: 400,
		},
		{
			name: "duplicate",
			body: map[string]any{"username": "algebra_fan", "email": testEmail, "password": testPassword},
			setup: func(s *AuthTestSetup) {
				s.MockService.On("SignUp", mock.Anything, mock.Anything).Return(nil, auth.ErrRegistrationFailed)
			},
			wantStatus: 400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SetupAuthTest(t)
			if tt.setup != nil {
				tt.setup(s)
			}

			resp, err := s.App.Test(testutil.CreateJSONRequest("POST", signUpEndpoint, tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			s.MockService.AssertExpectations(t)
		})
	}
}

func TestSignIn(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		s := SetupAuthTest(t)
		s.MockService.On("SignIn", mock.Anything, auth.SignInRequest{Email: testEmail, Password: testPassword}).
			Return(&auth.AuthResponse{User: s.TestUser, Token: "tok"}, nil)

		resp, err := s.App.Test(testutil.CreateJSONRequest("POST", signInEndpoint,
			map[string]string{"email": testEmail, "password": testPassword}))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var body auth.AuthResponse
		testutil.DecodeJSON(t, resp, &body)
		assert.Equal(t, "tok", body.Token)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		s := SetupAuthTest(t)
		s.MockService.On("SignIn", mock.Anything, mock.Anything).Return(nil, auth.ErrInvalidCredentials)

		resp, err := s.App.Test(testutil.CreateJSONRequest("POST", signInEndpoint,
			map[string]string{"email": testEmail, "password": "Wrong12345"}))
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
	})

	t.Run("rate limited", func(t *testing.T) {
		s := SetupAuthTest(t)
		s.MockService.On("SignIn", mock.Anything, mock.Anything).Return(nil, auth.ErrInvalidCredentials)

		var last int
		for range 3 {
			resp, err := s.App.Test(testutil.CreateJSONRequest("POST", signInEndpoint,
				map[string]string{"email": testEmail, "password": testPassword}))
			require.NoError(t, err)
			last = resp.StatusCode
		}
		assert.Equal(t, 429, last)
	})
}

func TestMe(t *testing.T) {
	s := SetupAuthTest(t)

	resp, err := s.App.Test(testutil.CreateAuthenticatedRequest("GET", meEndpoint, nil, s.Token))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var me MeResponse
	testutil.DecodeJSON(t, resp, &me)
	assert.Equal(t, s.TestUser.ID.Hex(), me.UserID)
	assert.Equal(t, "algebra_fan", me.Username)

	resp, err = s.App.Test(testutil.CreateJSONRequest("GET", meEndpoint, nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestProfile(t *testing.T) {
	t.Run("get", func(t *testing.T) {
		s := SetupAuthTest(t)
		s.MockService.On("Profile", mock.Anything, s.TestUser.ID).Return(&auth.ProfileResponse{User: s.TestUser}, nil)

		resp, err := s.App.Test(testutil.CreateAuthenticatedRequest("GET", profileEndpoint, nil, s.Token))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("update with wrong password", func(t *testing.T) {
		s := SetupAuthTest(t)
		s.MockService.On("UpdateProfile", mock.Anything, s.TestUser.ID, mock.Anything).Return(nil, auth.ErrIncorrectPassword)

		resp, err := s.App.Test(testutil.CreateAuthenticatedRequest("PATCH", profileEndpoint,
			map[string]string{"password": "nope", "bio": "hi"}, s.Token))
		require.NoError(t, err)
		assert.Equal(t, 403, resp.StatusCode)
	})

	t.Run("bio too long", func(t *testing.T) {
		s := SetupAuthTest(t)
		long := make([]byte, 301)
		for i := range long {
			long[i] = 'a'
		}

		resp, err := s.App.Test(testutil.CreateAuthenticatedRequest("PATCH", profileEndpoint,
			map[string]string{"password": testPassword, "bio": string(long)}, s.Token))
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		s.MockService.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("update saved", func(t *testing.T) {
		s := SetupAuthTest(t)
		s.MockService.On("UpdateProfile", mock.Anything, s.TestUser.ID, mock.MatchedBy(func(r auth.UpdateProfileRequest) bool {
			return r.AIInstructions != nil && *r.AIInstructions == "Be brief"
		})).Return(&auth.ProfileResponse{User: s.TestUser}, nil)

		resp, err := s.App.Test(testutil.CreateAuthenticatedRequest("PATCH", profileEndpoint,
			map[string]string{"password": testPassword, "ai_instructions": "Be brief"}, s.Token))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		s.MockService.AssertExpectations(t)
	})
}
