package users

import (
	"encoding/json"
	"net/http"

	"github.com/user/todoapp-go/apperror"
	"github.com/user/todoapp-go/auth"
)

// Handlers provides the HTTP handlers for the users endpoints.
type Handlers struct {
	service *Service
}

// NewHandlers creates new user Handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleGetCurrentUser handles GET /me. The identity comes exclusively from
// the verified token placed in the context by the JWT middleware.
func (h *Handlers) HandleGetCurrentUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("not authenticated", nil))
			return
		}

		user, err := h.service.CurrentUser(r.Context(), userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(user)
	}
}
