package auth

import "context"

// contextKey is a private type for context keys, preventing collisions with
// keys defined in other packages.
type contextKey string

// userIDKey is the key under which the verified user id is stored in the
// request context.
const userIDKey contextKey = "auth_user_id"

// WithUserID returns a child context carrying the verified user id.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext retrieves the verified user id set by the JWT
// middleware. The second return value is false when no identity is present.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}
