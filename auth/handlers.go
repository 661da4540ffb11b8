package auth

import (
	"encoding/json"
	"net/http"

	"github.com/user/todoapp-go/apperror"
)

// Handlers wraps the auth Service with HTTP handlers for registration and
// login.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleRegister handles POST /register. It accepts a JSON body with email
// and password and responds 201 with the created user (without the password
// digest), 409 on a duplicate email, or 400 on invalid input.
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		if req.Email == "" || req.Password == "" {
			WriteError(w, r, apperror.NewBadRequestError("email and password are required", nil))
			return
		}

		user, err := h.service.Register(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, user)
	}
}

// HandleLogin handles POST /login. Credentials arrive form-encoded as
// username (the email) and password, matching the OAuth2 password flow the
// frontend already speaks. Responds 200 with a bearer token or 401 on any
// credential failure.
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid form body", err))
			return
		}

		email := r.PostFormValue("username")
		password := r.PostFormValue("password")
		if email == "" || password == "" {
			WriteError(w, r, apperror.NewBadRequestError("username and password are required", nil))
			return
		}

		resp, err := h.service.Login(r.Context(), email, password)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// writeJSON serializes data to JSON and writes it with the given status.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

// WriteError translates any error into the standardized JSON error shape.
// Errors that are not AppErrors are wrapped as a generic 500 so internal
// detail never leaks to clients.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}
	writeJSON(w, appErr.StatusCode(), appErr.ToResponse())
}
