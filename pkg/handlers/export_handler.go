package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/gracechapel/roster-engine/pkg/auth"
	"github.com/gracechapel/roster-engine/pkg/services"
)

// EmailRosterRequest for POST /api/admin/roster-export/email
type EmailRosterRequest struct {
	Year  int    `json:"year" validate:"required,min=2000,max=2100"`
	Month int    `json:"month" validate:"required,min=1,max=12"`
	To    string `json:"to" validate:"required,email"`
}

// ExportHandler handles roster export HTTP requests.
type ExportHandler struct {
	exportService services.ExportService
	logger        *zap.Logger
}

// NewExportHandler creates a new export handler.
func NewExportHandler(exportService services.ExportService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{exportService: exportService, logger: logger}
}

// RegisterRoutes registers the export handler's routes on the given mux.
func (h *ExportHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/admin/roster-export/email", authMiddleware.RequireAdmin(h.Email))
}

// Email handles POST /api/admin/roster-export/email
func (h *ExportHandler) Email(w http.ResponseWriter, r *http.Request) {
	var req EmailRosterRequest
	if !decodeAndValidate(w, r, h.logger, &req) {
		return
	}

	if err := h.exportService.EmailRoster(r.Context(), req.Year, req.Month, req.To); err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Roster emailed",
		zap.Int("year", req.Year),
		zap.Int("month", req.Month),
		zap.String("to", req.To))

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true}); err != nil {
		h.logger.Error("Failed to write export response", zap.Error(err))
	}
}
