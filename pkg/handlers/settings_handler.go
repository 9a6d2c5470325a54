package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/gracechapel/roster-engine/pkg/auth"
	"github.com/gracechapel/roster-engine/pkg/services"
)

// UpdateSettingsRequest for PUT /api/admin/settings
type UpdateSettingsRequest struct {
	DeadlineDay int    `json:"deadline_day" validate:"required,min=1,max=28"`
	NameFormat  string `json:"name_format" validate:"required"`
}

// SettingsHandler handles application settings HTTP requests.
type SettingsHandler struct {
	settingsService services.SettingsService
	logger          *zap.Logger
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(settingsService services.SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, logger: logger}
}

// RegisterRoutes registers the settings handler's routes on the given mux.
func (h *SettingsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/settings", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT /api/admin/settings", authMiddleware.RequireAdmin(h.Update))
}

// Get handles GET /api/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.Get(r.Context())
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, settings); err != nil {
		h.logger.Error("Failed to write settings response", zap.Error(err))
	}
}

// Update handles PUT /api/admin/settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if !decodeAndValidate(w, r, h.logger, &req) {
		return
	}

	settings, err := h.settingsService.Get(r.Context())
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	settings.DeadlineDay = req.DeadlineDay
	settings.NameFormat = req.NameFormat

	if err := h.settingsService.Update(r.Context(), settings); err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, settings); err != nil {
		h.logger.Error("Failed to write settings response", zap.Error(err))
	}
}
