package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/gracechapel/roster-engine/pkg/auth"
	"github.com/gracechapel/roster-engine/pkg/services"
)

// FinalizeRequest for POST /api/admin/finalize-roster
type FinalizeRequest struct {
	Year    int    `json:"year" validate:"required"`
	Month   int    `json:"month" validate:"required,min=1,max=12"`
	Message string `json:"message"`
}

// FinalizeHandler exposes the finalization gate.
type FinalizeHandler struct {
	finalizeService services.FinalizeService
	logger          *zap.Logger
}

// NewFinalizeHandler creates a new finalize handler.
func NewFinalizeHandler(finalizeService services.FinalizeService, logger *zap.Logger) *FinalizeHandler {
	return &FinalizeHandler{finalizeService: finalizeService, logger: logger}
}

// RegisterRoutes registers the finalize handler's routes on the given mux.
func (h *FinalizeHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/admin/finalize-roster",
		authMiddleware.RequireAdmin(h.Finalize))
	mux.HandleFunc("DELETE /api/admin/finalize-roster/{year}/{month}",
		authMiddleware.RequireAdmin(h.Unfinalize))
	mux.HandleFunc("GET /api/admin/finalize-roster/{year}/{month}",
		authMiddleware.RequireAuth(h.Status))
}

// Finalize handles POST /api/admin/finalize-roster
func (h *FinalizeHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	var req FinalizeRequest
	if !decodeAndValidate(w, r, h.logger, &req) {
		return
	}

	record, err := h.finalizeService.Finalize(r.Context(), req.Year, req.Month, req.Message, auth.GetUserID(r.Context()))
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, record); err != nil {
		h.logger.Error("Failed to write finalize response", zap.Error(err))
	}
}

// Unfinalize handles DELETE /api/admin/finalize-roster/{year}/{month}
func (h *FinalizeHandler) Unfinalize(w http.ResponseWriter, r *http.Request) {
	year, month, ok := ParseYearMonth(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.finalizeService.Unfinalize(r.Context(), year, month); err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true}); err != nil {
		h.logger.Error("Failed to write unfinalize response", zap.Error(err))
	}
}

// Status handles GET /api/admin/finalize-roster/{year}/{month}
func (h *FinalizeHandler) Status(w http.ResponseWriter, r *http.Request) {
	year, month, ok := ParseYearMonth(w, r, h.logger)
	if !ok {
		return
	}

	record, err := h.finalizeService.Status(r.Context(), year, month)
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, record); err != nil {
		h.logger.Error("Failed to write finalize status response", zap.Error(err))
	}
}
