package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gracechapel/roster-engine/pkg/auth"
	"github.com/gracechapel/roster-engine/pkg/services"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// ProposeAssignmentRequest for POST /api/admin/roster-assignments
type ProposeAssignmentRequest struct {
	RoleID      uuid.UUID `json:"role_id" validate:"required"`
	UserID      uuid.UUID `json:"user_id" validate:"required"`
	ServiceDate string    `json:"service_date" validate:"required,datetime=2006-01-02"`
}

// ProposeAssignmentResponse reports the updated assignment set for the date
// and whether the proposal removed an existing assignment (toggle).
type ProposeAssignmentResponse struct {
	Removed     bool                      `json:"removed"`
	Assignments []services.AssignmentView `json:"assignments"`
}

// BatchRequest for POST /api/admin/roster-assignments/batch
type BatchRequest struct {
	Proposals []ProposeAssignmentRequest `json:"proposals" validate:"required,min=1,dive"`
}

// ClearResponse for DELETE /api/admin/roster-assignments/date/...
type ClearResponse struct {
	Removed int64 `json:"removed"`
}

// ============================================================================
// Handler
// ============================================================================

// RosterHandler exposes the roster builder: per-Sunday aggregates,
// assignment proposals, and bulk clearing.
type RosterHandler struct {
	rosterService services.RosterService
	exportService services.ExportService
	logger        *zap.Logger
}

// NewRosterHandler creates a new roster handler.
func NewRosterHandler(rosterService services.RosterService, exportService services.ExportService, logger *zap.Logger) *RosterHandler {
	return &RosterHandler{
		rosterService: rosterService,
		exportService: exportService,
		logger:        logger,
	}
}

// RegisterRoutes registers the roster handler's routes on the given mux.
func (h *RosterHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/roster-builder/available-sundays/{year}/{month}",
		authMiddleware.RequireAdmin(h.AvailableSundays))
	mux.HandleFunc("POST /api/admin/roster-assignments",
		authMiddleware.RequireAdmin(h.Propose))
	mux.HandleFunc("POST /api/admin/roster-assignments/batch",
		authMiddleware.RequireAdmin(h.ProposeBatch))
	mux.HandleFunc("DELETE /api/admin/roster-assignments/date/{year}/{month}/{day}",
		authMiddleware.RequireAdmin(h.ClearDate))
	mux.HandleFunc("GET /api/roster/{year}/{month}",
		authMiddleware.RequireAuth(h.MonthRoster))
}

// AvailableSundays handles GET /api/roster-builder/available-sundays/{year}/{month}
func (h *RosterHandler) AvailableSundays(w http.ResponseWriter, r *http.Request) {
	year, month, ok := ParseYearMonth(w, r, h.logger)
	if !ok {
		return
	}

	sundays, err := h.rosterService.ListAvailableSundays(r.Context(), year, month)
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, sundays); err != nil {
		h.logger.Error("Failed to write available-sundays response", zap.Error(err))
	}
}

// Propose handles POST /api/admin/roster-assignments
func (h *RosterHandler) Propose(w http.ResponseWriter, r *http.Request) {
	var req ProposeAssignmentRequest
	if !decodeAndValidate(w, r, h.logger, &req) {
		return
	}

	date, err := time.Parse("2006-01-02", req.ServiceDate)
	if err != nil {
		writeBadRequest(w, h.logger, "Invalid service_date")
		return
	}

	assignments, removed, err := h.rosterService.ProposeAssignment(r.Context(), date, req.RoleID, req.UserID)
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	response := ProposeAssignmentResponse{
		Removed:     removed,
		Assignments: assignments,
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write assignment response", zap.Error(err))
	}
}

// ProposeBatch handles POST /api/admin/roster-assignments/batch
//
// Each staged pairing is committed independently; the response reports one
// outcome per proposal and the HTTP status stays 200 even when some fail.
func (h *RosterHandler) ProposeBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !decodeAndValidate(w, r, h.logger, &req) {
		return
	}

	proposals := make([]services.Proposal, 0, len(req.Proposals))
	for _, p := range req.Proposals {
		date, err := time.Parse("2006-01-02", p.ServiceDate)
		if err != nil {
			writeBadRequest(w, h.logger, "Invalid service_date: "+p.ServiceDate)
			return
		}
		proposals = append(proposals, services.Proposal{
			RoleID:      p.RoleID,
			UserID:      p.UserID,
			ServiceDate: date,
		})
	}

	outcomes := h.rosterService.ProposeBatch(r.Context(), proposals)

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: outcomes}); err != nil {
		h.logger.Error("Failed to write batch response", zap.Error(err))
	}
}

// ClearDate handles DELETE /api/admin/roster-assignments/date/{year}/{month}/{day}
func (h *RosterHandler) ClearDate(w http.ResponseWriter, r *http.Request) {
	year, month, ok := ParseYearMonth(w, r, h.logger)
	if !ok {
		return
	}
	day, err := strconv.Atoi(r.PathValue("day"))
	if err != nil || day < 1 || day > 31 {
		writeBadRequest(w, h.logger, "Invalid day")
		return
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes impossible dates (Feb 31 becomes Mar 2); a
	// normalized result means the caller named a date that does not exist.
	if date.Day() != day || date.Month() != time.Month(month) {
		writeBadRequest(w, h.logger, "Invalid day")
		return
	}
	removed, err := h.rosterService.ClearAssignmentsForDate(r.Context(), date)
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	// Zero removed rows is still a success, not a 404.
	if err := WriteJSON(w, http.StatusOK, ClearResponse{Removed: removed}); err != nil {
		h.logger.Error("Failed to write clear response", zap.Error(err))
	}
}

// MonthRoster handles GET /api/roster/{year}/{month} — the member-facing
// view, reporting published or draft per the finalization gate.
func (h *RosterHandler) MonthRoster(w http.ResponseWriter, r *http.Request) {
	year, month, ok := ParseYearMonth(w, r, h.logger)
	if !ok {
		return
	}

	roster, err := h.exportService.MonthRoster(r.Context(), year, month)
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, roster); err != nil {
		h.logger.Error("Failed to write month roster response", zap.Error(err))
	}
}
