package service

import (
	"context"
	"testing"

	"mealplanner/internal/middleware"
	"mealplanner/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-at-least-32-characters"

func TestSignup(t *testing.T) {
	t.Parallel()

	var created *models.User
	users := &userRepoStub{
		createFn: func(_ context.Context, u *models.User) error {
			u.ID = 5
			created = u
			return nil
		},
	}
	svc := NewAuthService(users, testSecret, 24)

	user, err := svc.Signup(context.Background(), SignupInput{
		Username:        " alice ",
		Email:           "Alice@Example.com",
		Password:        "hunter22",
		ConfirmPassword: "hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(5), user.ID)
	assert.Equal(t, "alice", created.Username)
	assert.Equal(t, "alice@example.com", created.Email)
	assert.NotEqual(t, "hunter22", created.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("hunter22")))
}

func TestSignup_Validation(t *testing.T) {
	t.Parallel()

	users := &userRepoStub{
		createFn: func(context.Context, *models.User) error {
			t.Fatal("invalid signup must not reach the store")
			return nil
		},
	}
	svc := NewAuthService(users, testSecret, 24)

	tests := []struct {
		name string
		in   SignupInput
		msg  string
	}{
		{"missing field", SignupInput{Username: "alice", Email: "a@b.co", Password: "secret1"}, "All fields are required"},
		{"short password", SignupInput{Username: "alice", Email: "a@b.co", Password: "abc", ConfirmPassword: "abc"}, "Password must be at least 6 characters"},
		{"mismatch", SignupInput{Username: "alice", Email: "a@b.co", Password: "secret1", ConfirmPassword: "secret2"}, "Passwords do not match"},
		{"bad email", SignupInput{Username: "alice", Email: "nope", Password: "secret1", ConfirmPassword: "secret1"}, "invalid email format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(context.Background(), tt.in)
			assertAppCode(t, err, models.CodeValidation)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestSignup_Conflict(t *testing.T) {
	t.Parallel()

	users := &userRepoStub{
		createFn: func(context.Context, *models.User) error {
			return models.NewConflictError("Username or email already exists")
		},
	}
	svc := NewAuthService(users, testSecret, 24)

	_, err := svc.Signup(context.Background(), SignupInput{
		Username: "alice", Email: "a@b.co", Password: "secret1", ConfirmPassword: "secret1",
	})
	assertAppCode(t, err, models.CodeConflict)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &userRepoStub{
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			if username != "alice" {
				return nil, nil
			}
			return &models.User{ID: 12, Username: "alice", Password: string(hash)}, nil
		},
	}
	svc := NewAuthService(users, testSecret, 24)

	token, user, err := svc.Login(context.Background(), "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, uint(12), user.ID)

	userID, err := middleware.ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, uint(12), userID)

	_, err = middleware.ParseToken("another-secret-key-at-least-32-chars", token)
	assert.Error(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(context.Background(), "alice", "nope")
		assertAppCode(t, err, models.CodeUnauthorized)
		assert.Contains(t, err.Error(), "Invalid username or password")
	})

	t.Run("unknown user", func(t *testing.T) {
		_, _, err := svc.Login(context.Background(), "bob", "secret1")
		assertAppCode(t, err, models.CodeUnauthorized)
	})

	t.Run("missing credentials", func(t *testing.T) {
		_, _, err := svc.Login(context.Background(), "", "")
		assertAppCode(t, err, models.CodeValidation)
	})
}
