package auth

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/user/todoapp-go/apperror"
)

// JWTMiddleware verifies the bearer token on every request and stores the
// resulting user id in the request context. Requests without a valid token
// never reach the wrapped handler.
func JWTMiddleware(tokens *TokenService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteError(w, r, apperror.NewAuthError("Authorization header is missing", nil))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				WriteError(w, r, apperror.NewAuthError("Authorization header format must be Bearer {token}", nil))
				return
			}

			userID, err := tokens.Verify(parts[1])
			if err != nil {
				WriteError(w, r, apperror.NewAuthError("invalid or expired token", err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// RequireOwner enforces that the user id in the URL path equals the
// identity verified by JWTMiddleware. The path value alone is never
// trusted: a valid token for user A against /B/... is rejected with 403
// regardless of whether B exists. Must be mounted inside JWTMiddleware.
func RequireOwner(param string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenUserID, ok := UserIDFromContext(r.Context())
			if !ok {
				WriteError(w, r, apperror.NewAuthError("not authenticated", nil))
				return
			}

			pathUserID, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
			if err != nil {
				WriteError(w, r, apperror.NewBadRequestError("invalid user id in path", nil))
				return
			}

			if pathUserID != tokenUserID {
				WriteError(w, r, apperror.NewForbiddenError("user id does not match authenticated user", nil))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
