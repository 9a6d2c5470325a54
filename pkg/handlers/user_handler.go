package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gracechapel/roster-engine/pkg/auth"
	"github.com/gracechapel/roster-engine/pkg/services"
)

// CreateUserRequest for POST /api/admin/users
type CreateUserRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	PIN       string `json:"pin" validate:"required,min=4"`
	IsAdmin   bool   `json:"is_admin"`
}

// UpdateUserRequest for PUT /api/admin/users/{id}
type UpdateUserRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	IsAdmin   bool   `json:"is_admin"`
}

// UserHandler handles member administration HTTP requests.
type UserHandler struct {
	userService services.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService services.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// RegisterRoutes registers the user handler's routes on the given mux.
func (h *UserHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/admin/users", authMiddleware.RequireAdmin(h.List))
	mux.HandleFunc("POST /api/admin/users", authMiddleware.RequireAdmin(h.Create))
	mux.HandleFunc("PUT /api/admin/users/{id}", authMiddleware.RequireAdmin(h.Update))
	mux.HandleFunc("DELETE /api/admin/users/{id}", authMiddleware.RequireAdmin(h.Delete))
	mux.HandleFunc("GET /api/users/me", authMiddleware.RequireAuth(h.Me))
}

// List handles GET /api/admin/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, users); err != nil {
		h.logger.Error("Failed to write users response", zap.Error(err))
	}
}

// Create handles POST /api/admin/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeAndValidate(w, r, h.logger, &req) {
		return
	}

	user, err := h.userService.Create(r.Context(), req.FirstName, req.LastName, req.PIN, req.IsAdmin)
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, user); err != nil {
		h.logger.Error("Failed to write user response", zap.Error(err))
	}
}

// Update handles PUT /api/admin/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, h.logger, "Invalid user id")
		return
	}

	var req UpdateUserRequest
	if !decodeAndValidate(w, r, h.logger, &req) {
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.IsAdmin = req.IsAdmin

	if err := h.userService.Update(r.Context(), user); err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, user); err != nil {
		h.logger.Error("Failed to write user response", zap.Error(err))
	}
}

// Delete handles DELETE /api/admin/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, h.logger, "Invalid user id")
		return
	}

	if err := h.userService.Delete(r.Context(), id); err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true}); err != nil {
		h.logger.Error("Failed to write user response", zap.Error(err))
	}
}

// Me handles GET /api/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == uuid.Nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Not authenticated"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, user); err != nil {
		h.logger.Error("Failed to write user response", zap.Error(err))
	}
}
