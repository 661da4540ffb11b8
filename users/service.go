// Package users exposes the current-user endpoint: it resolves the verified
// identity from a request into the stored user record.
package users

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/user/todoapp-go/apperror"
	"github.com/user/todoapp-go/auth"
)

// Service loads user records for identities that have already been verified
// by the auth middleware.
type Service struct {
	store  auth.UserStore
	logger *zap.Logger
}

// NewService creates a new users Service.
func NewService(store auth.UserStore, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// CurrentUser fetches the user row for a verified user id. A missing row
// yields NotFound: the token was valid, but the account it names no longer
// exists.
func (s *Service) CurrentUser(ctx context.Context, userID int64) (*auth.User, error) {
	user, err := s.store.ByID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load current user", zap.Int64("user_id", userID), zap.Error(err))
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}
	if user == nil {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("user with id %d not found", userID), nil)
	}
	return user, nil
}
