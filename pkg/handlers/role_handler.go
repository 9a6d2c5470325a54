package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gracechapel/roster-engine/pkg/auth"
	"github.com/gracechapel/roster-engine/pkg/services"
)

// CreateRoleRequest for POST /api/service-roles
type CreateRoleRequest struct {
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description"`
	MaxOccupants int    `json:"max_occupants" validate:"min=0"`
}

// UpdateRoleRequest for PUT /api/service-roles/{id}
type UpdateRoleRequest struct {
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description"`
	IsActive     bool   `json:"is_active"`
	MaxOccupants int    `json:"max_occupants" validate:"min=1"`
}

// ReorderRequest for PUT /api/service-roles/reorder. Must list every role
// exactly once; positions are reassigned densely in this order.
type ReorderRequest struct {
	RoleIDs []uuid.UUID `json:"role_ids" validate:"required,min=1"`
}

// RoleHandler handles service role registry HTTP requests.
type RoleHandler struct {
	roleService services.RoleService
	logger      *zap.Logger
}

// NewRoleHandler creates a new role handler.
func NewRoleHandler(roleService services.RoleService, logger *zap.Logger) *RoleHandler {
	return &RoleHandler{roleService: roleService, logger: logger}
}

// RegisterRoutes registers the role handler's routes on the given mux.
func (h *RoleHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/service-roles", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/service-roles", authMiddleware.RequireAdmin(h.Create))
	mux.HandleFunc("PUT /api/service-roles/reorder", authMiddleware.RequireAdmin(h.Reorder))
	mux.HandleFunc("PUT /api/service-roles/{id}", authMiddleware.RequireAdmin(h.Update))
	mux.HandleFunc("DELETE /api/service-roles/{id}", authMiddleware.RequireAdmin(h.Delete))
}

// List handles GET /api/service-roles
func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roleService.List(r.Context())
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, roles); err != nil {
		h.logger.Error("Failed to write roles response", zap.Error(err))
	}
}

// Create handles POST /api/service-roles
func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if !decodeAndValidate(w, r, h.logger, &req) {
		return
	}

	role, err := h.roleService.Create(r.Context(), req.Name, req.Description, req.MaxOccupants)
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, role); err != nil {
		h.logger.Error("Failed to write role response", zap.Error(err))
	}
}

// Update handles PUT /api/service-roles/{id}
func (h *RoleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, h.logger, "Invalid role id")
		return
	}

	var req UpdateRoleRequest
	if !decodeAndValidate(w, r, h.logger, &req) {
		return
	}

	role, err := h.roleService.GetByID(r.Context(), id)
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	role.Name = req.Name
	role.Description = req.Description
	role.IsActive = req.IsActive
	role.MaxOccupants = req.MaxOccupants

	if err := h.roleService.Update(r.Context(), role); err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, role); err != nil {
		h.logger.Error("Failed to write role response", zap.Error(err))
	}
}

// Delete handles DELETE /api/service-roles/{id}
func (h *RoleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, h.logger, "Invalid role id")
		return
	}

	if err := h.roleService.Delete(r.Context(), id); err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true}); err != nil {
		h.logger.Error("Failed to write role response", zap.Error(err))
	}
}

// Reorder handles PUT /api/service-roles/reorder
func (h *RoleHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if !decodeAndValidate(w, r, h.logger, &req) {
		return
	}

	if err := h.roleService.Reorder(r.Context(), req.RoleIDs); err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	roles, err := h.roleService.List(r.Context())
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, roles); err != nil {
		h.logger.Error("Failed to write roles response", zap.Error(err))
	}
}
