package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gracechapel/roster-engine/pkg/apperrors"
	"github.com/gracechapel/roster-engine/pkg/auth"
	"github.com/gracechapel/roster-engine/pkg/services"
)

// SetAvailabilityRequest for PUT /api/availability. UserID may only differ
// from the caller for admins.
type SetAvailabilityRequest struct {
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	ServiceDate string     `json:"service_date" validate:"required,datetime=2006-01-02"`
	IsAvailable bool       `json:"is_available"`
}

// AvailabilityHandler handles availability HTTP requests.
type AvailabilityHandler struct {
	availabilityService services.AvailabilityService
	logger              *zap.Logger
}

// NewAvailabilityHandler creates a new availability handler.
func NewAvailabilityHandler(availabilityService services.AvailabilityService, logger *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{availabilityService: availabilityService, logger: logger}
}

// RegisterRoutes registers the availability handler's routes on the given mux.
func (h *AvailabilityHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("PUT /api/availability", authMiddleware.RequireAuth(h.Set))
	mux.HandleFunc("GET /api/availability/me/{year}/{month}", authMiddleware.RequireAuth(h.MyMonth))
	mux.HandleFunc("GET /api/availability/month/{year}/{month}", authMiddleware.RequireAdmin(h.Month))
}

// Set handles PUT /api/availability
func (h *AvailabilityHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req SetAvailabilityRequest
	if !decodeAndValidate(w, r, h.logger, &req) {
		return
	}

	date, err := time.Parse("2006-01-02", req.ServiceDate)
	if err != nil {
		writeBadRequest(w, h.logger, "Invalid service_date")
		return
	}

	callerID := auth.GetUserID(r.Context())
	isAdmin := auth.IsAdmin(r.Context())

	targetID := callerID
	if req.UserID != nil && *req.UserID != callerID {
		// Only admins may record availability on someone else's behalf.
		if !isAdmin {
			ServiceError(w, h.logger, apperrors.ErrUnauthorized)
			return
		}
		targetID = *req.UserID
	}

	record, err := h.availabilityService.SetAvailability(r.Context(), targetID, date, req.IsAvailable, isAdmin)
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, record); err != nil {
		h.logger.Error("Failed to write availability response", zap.Error(err))
	}
}

// MyMonth handles GET /api/availability/me/{year}/{month}
func (h *AvailabilityHandler) MyMonth(w http.ResponseWriter, r *http.Request) {
	year, month, ok := ParseYearMonth(w, r, h.logger)
	if !ok {
		return
	}

	records, err := h.availabilityService.MonthForUser(r.Context(), auth.GetUserID(r.Context()), year, month)
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, records); err != nil {
		h.logger.Error("Failed to write availability response", zap.Error(err))
	}
}

// Month handles GET /api/availability/month/{year}/{month}
func (h *AvailabilityHandler) Month(w http.ResponseWriter, r *http.Request) {
	year, month, ok := ParseYearMonth(w, r, h.logger)
	if !ok {
		return
	}

	records, err := h.availabilityService.Month(r.Context(), year, month)
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, records); err != nil {
		h.logger.Error("Failed to write availability response", zap.Error(err))
	}
}
