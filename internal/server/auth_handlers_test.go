package server

import (
	"context"
	"net/http"
	"testing"

	"mealplanner/internal/middleware"
	"mealplanner/internal/models"
	"mealplanner/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func newAuthApp(repo *MockUserRepository) *fiber.App {
	cfg := testConfig()
	middleware.InitMiddleware(cfg)
	s := &Server{
		config:      cfg,
		userRepo:    repo,
		authService: service.NewAuthService(repo, cfg.JWTSecret, cfg.JWTTTLHours),
	}

	app := fiber.New()
	app.Post("/signup", s.Signup)
	app.Post("/login", s.Login)
	return app
}

func TestSignup(t *testing.T) {
	valid := map[string]string{
		"username":         "testuser",
		"email":            "Test@Example.com",
		"password":         "secret1",
		"confirm_password": "secret1",
	}
	with := func(key, value string) map[string]string {
		out := make(map[string]string, len(valid))
		for k, v := range valid {
			out[k] = v
		}
		out[key] = value
		return out
	}

	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func(m *MockUserRepository)
		expectedStatus int
		expectedError  string
	}{
		{
			name: "Success",
			body: valid,
			mockSetup: func(m *MockUserRepository) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
					return u.Username == "testuser" && u.Email == "test@example.com" && u.Password != "secret1"
				})).Run(func(args mock.Arguments) {
					args.Get(1).(*models.User).ID = 7
				}).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Duplicate User",
			body: valid,
			mockSetup: func(m *MockUserRepository) {
				m.On("Create", mock.Anything, mock.Anything).
					Return(models.NewConflictError("Username or email already exists"))
			},
			expectedStatus: http.StatusConflict,
			expectedError:  "Username or email already exists",
		},
		{
			name:           "Missing Field",
			body:           with("email", ""),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "All fields are required",
		},
		{
			name:           "Short Password",
			body:           with("password", "abc"),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Password must be at least 6 characters",
		},
		{
			name:           "Password Mismatch",
			body:           with("confirm_password", "secret2"),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Passwords do not match",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			if tt.mockSetup != nil {
				tt.mockSetup(repo)
			}
			app := newAuthApp(repo)

			resp := doJSON(t, app, http.MethodPost, "/signup", tt.body, "")
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, decode[models.ErrorResponse](t, resp).Error)
			} else {
				body := decode[AuthResponse](t, resp)
				require.NotEmpty(t, body.Token)
				userID, err := middleware.ParseToken(testSecret, body.Token)
				require.NoError(t, err)
				assert.Equal(t, uint(7), userID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	alice := &models.User{ID: 3, Username: "alice", Email: "alice@example.com", Password: string(hash)}

	tests := []struct {
		name           string
		body           LoginRequest
		mockSetup      func(m *MockUserRepository)
		expectedStatus int
	}{
		{
			name: "Success",
			body: LoginRequest{Username: "alice", Password: "secret1"},
			mockSetup: func(m *MockUserRepository) {
				m.On("GetByUsername", mock.Anything, "alice").Return(alice, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Wrong Password",
			body: LoginRequest{Username: "alice", Password: "nope123"},
			mockSetup: func(m *MockUserRepository) {
				m.On("GetByUsername", mock.Anything, "alice").Return(alice, nil)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Unknown User",
			body: LoginRequest{Username: "mallory", Password: "secret1"},
			mockSetup: func(m *MockUserRepository) {
				m.On("GetByUsername", mock.Anything, "mallory").Return(nil, nil)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Missing Password",
			body:           LoginRequest{Username: "alice"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			if tt.mockSetup != nil {
				tt.mockSetup(repo)
			}
			app := newAuthApp(repo)

			resp := doJSON(t, app, http.MethodPost, "/login", tt.body, "")
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedStatus == http.StatusOK {
				body := decode[AuthResponse](t, resp)
				assert.Equal(t, "Login successful", body.Message)
				assert.Equal(t, "alice", body.User.Username)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestSignup_DuplicateAgainstDatabase(t *testing.T) {
	app, _, _ := newTestApp(t)
	signupToken(t, app, "alice")

	resp := doJSON(t, app, http.MethodPost, "/api/auth/signup", map[string]string{
		"username": "alice", "email": "alice2@example.com", "password": "secret1", "confirm_password": "secret1",
	}, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, models.CodeConflict, decode[models.ErrorResponse](t, resp).Code)
}
