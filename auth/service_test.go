package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/todoapp-go/apperror"
	"github.com/user/todoapp-go/config"
)

// memoryUserStore is an in-memory UserStore for unit tests.
type memoryUserStore struct {
	users  map[string]*User
	nextID int64
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: make(map[string]*User), nextID: 1}
}

func (m *memoryUserStore) Create(ctx context.Context, email, hashedPassword string) (*User, error) {
	if _, exists := m.users[email]; exists {
		return nil, ErrDuplicateEmail
	}
	user := &User{
		ID:             m.nextID,
		Email:          email,
		HashedPassword: hashedPassword,
		CreatedAt:      time.Now(),
		IsActive:       true,
	}
	m.nextID++
	m.users[email] = user
	return user, nil
}

func (m *memoryUserStore) ByEmail(ctx context.Context, email string) (*User, error) {
	return m.users[email], nil
}

func (m *memoryUserStore) ByID(ctx context.Context, id int64) (*User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, nil
}

func newTestService(store UserStore) *Service {
	tokens := NewTokenService(config.AuthConfig{
		JWTSecret:           "test-secret",
		AccessTokenDuration: 30 * time.Minute,
	})
	return NewService(store, NewPasswordHasher(), tokens, zap.NewNop())
}

func errMessage(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := apperror.FromError(err)
	require.True(t, ok, "expected an AppError, got %v", err)
	return appErr.Message
}

func TestRegister(t *testing.T) {
	store := newMemoryUserStore()
	svc := newTestService(store)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Email: "Alice@Example.com", Password: "secret123"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "alice@example.com", user.Email, "email is normalized to lower case")
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "secret123", user.HashedPassword)
	assert.True(t, strings.HasPrefix(user.HashedPassword, "pbkdf2_sha256$"))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newMemoryUserStore()
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Email: "alice@example.com", Password: "other-password"})
	require.Error(t, err)
	assert.True(t, apperror.IsConflictError(err))
}

func TestRegisterDuplicateRace(t *testing.T) {
	// The racing store passes the existence pre-check but fails the insert,
	// modeling a concurrent registration that wins in between. The unique
	// constraint at the store is the authoritative guard and must still
	// surface as a conflict.
	svc := newTestService(&racingUserStore{})
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "alice@example.com", Password: "secret123"})
	require.Error(t, err)
	assert.True(t, apperror.IsConflictError(err))
}

func TestRegisterInvalidInput(t *testing.T) {
	svc := newTestService(newMemoryUserStore())
	ctx := context.Background()

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"empty email", RegisterRequest{Email: "", Password: "secret123"}},
		{"email without at sign", RegisterRequest{Email: "alice.example.com", Password: "secret123"}},
		{"empty password", RegisterRequest{Email: "alice@example.com", Password: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.req)
			require.Error(t, err)
			assert.True(t, apperror.IsValidationError(err))
		})
	}
}

func TestLogin(t *testing.T) {
	store := newMemoryUserStore()
	svc := newTestService(store)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)

	// The issued token verifies back to the same user id.
	tokens := NewTokenService(config.AuthConfig{JWTSecret: "test-secret", AccessTokenDuration: 30 * time.Minute})
	userID, err := tokens.Verify(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestLoginEnumerationResistance(t *testing.T) {
	store := newMemoryUserStore()
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "alice@example.com", "wrong-password")
	_, unknownEmail := svc.Login(ctx, "nobody@example.com", "secret123")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.True(t, apperror.IsAuthError(wrongPassword))
	assert.True(t, apperror.IsAuthError(unknownEmail))
	// Identical message for both, so responses never reveal which emails
	// are registered.
	assert.Equal(t, errMessage(t, wrongPassword), errMessage(t, unknownEmail))
}

func TestLoginInactiveUser(t *testing.T) {
	store := newMemoryUserStore()
	svc := newTestService(store)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	user.IsActive = false

	_, err = svc.Login(ctx, "alice@example.com", "secret123")
	require.Error(t, err)
	assert.True(t, apperror.IsAuthError(err))
}

// racingUserStore reports no user on lookup but fails the insert, modeling
// a concurrent registration that wins between pre-check and insert.
type racingUserStore struct{}

func (r *racingUserStore) ByEmail(ctx context.Context, email string) (*User, error) {
	return nil, nil
}

func (r *racingUserStore) ByID(ctx context.Context, id int64) (*User, error) {
	return nil, nil
}

func (r *racingUserStore) Create(ctx context.Context, email, hashedPassword string) (*User, error) {
	return nil, ErrDuplicateEmail
}
