package tasks

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/todoapp-go/apperror"
	"github.com/user/todoapp-go/auth"
)

// Handler handles HTTP requests for tasks. It expects to be mounted behind
// auth.JWTMiddleware and auth.RequireOwner, so by the time a request lands
// here the context identity equals the path user id.
type Handler struct {
	service *Service
}

// NewHandler creates a new task Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the task routes on a sub-router mounted at
// /{userID}/tasks. PUT and PATCH share partial-update semantics.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

// owner extracts the verified identity. RequireOwner has already checked it
// against the path, so it is safe to use as the row scope.
func owner(r *http.Request) (int64, bool) {
	return auth.UserIDFromContext(r.Context())
}

// taskID parses the {id} path parameter. A non-numeric id cannot name any
// task, so it gets the same 404 as a missing row.
func taskID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, apperror.NewNotFoundError(taskNotFoundMsg, nil)
	}
	return id, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		auth.WriteError(w, r, apperror.NewAuthError("not authenticated", nil))
		return
	}

	resp, err := h.service.List(r.Context(), ownerID)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		auth.WriteError(w, r, apperror.NewAuthError("not authenticated", nil))
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
		return
	}
	defer r.Body.Close()

	task, err := h.service.Create(r.Context(), ownerID, req)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		auth.WriteError(w, r, apperror.NewAuthError("not authenticated", nil))
		return
	}
	id, err := taskID(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	task, err := h.service.Get(r.Context(), ownerID, id)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		auth.WriteError(w, r, apperror.NewAuthError("not authenticated", nil))
		return
	}
	id, err := taskID(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	var patch Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
		return
	}
	defer r.Body.Close()

	task, err := h.service.Update(r.Context(), ownerID, id, patch)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		auth.WriteError(w, r, apperror.NewAuthError("not authenticated", nil))
		return
	}
	id, err := taskID(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), ownerID, id); err != nil {
		auth.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeJSON serializes data to JSON with the given status.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}
