package auth

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/user/todoapp-go/apperror"
)

// invalidCredentialsMsg is used for both "no such email" and "wrong
// password" so login responses never reveal which accounts exist.
const invalidCredentialsMsg = "incorrect email or password"

// Service implements the registration and login flows on top of a
// UserStore, the password hasher and the token service.
type Service struct {
	store  UserStore
	hasher *PasswordHasher
	tokens *TokenService
	logger *zap.Logger
}

// NewService creates a new auth Service. Dependencies are injected
// explicitly; nothing here reads ambient globals.
func NewService(store UserStore, hasher *PasswordHasher, tokens *TokenService, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates a new user account. The email is normalized to lower
// case before any lookup or insert. The existence pre-check gives a clean
// 409 in the common case; the database unique constraint catches the race
// between two concurrent registrations with the same email.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.NewValidationError("a valid email is required", nil)
	}
	if req.Password == "" {
		return nil, apperror.NewValidationError("password is required", nil)
	}

	existing, err := s.store.ByEmail(ctx, email)
	if err != nil {
		s.logger.Error("failed to check existing email", zap.Error(err))
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}
	if existing != nil {
		return nil, apperror.NewConflictError("user with this email already exists", nil)
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperror.NewValidationError("invalid password format", err)
	}

	user, err := s.store.Create(ctx, email, digest)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, apperror.NewConflictError("user with this email already exists", nil)
		}
		s.logger.Error("failed to insert user", zap.Error(err))
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// Login authenticates a user by email and password and returns a bearer
// token. Unknown email, wrong password and inactive account all map to 401;
// the first two share one message to resist account enumeration.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	user, err := s.store.ByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		s.logger.Error("failed to look up user for login", zap.Error(err))
		return nil, apperror.NewDatabaseError("failed to log in", err)
	}
	if user == nil {
		return nil, apperror.NewAuthError(invalidCredentialsMsg, nil)
	}

	if !s.hasher.Verify(password, user.HashedPassword) {
		return nil, apperror.NewAuthError(invalidCredentialsMsg, nil)
	}

	if !user.IsActive {
		return nil, apperror.NewAuthError("inactive user", nil)
	}

	token, err := s.tokens.Issue(user.ID, 0)
	if err != nil {
		s.logger.Error("failed to issue token", zap.Error(err))
		return nil, apperror.NewInternalError("failed to log in", err)
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	}, nil
}
