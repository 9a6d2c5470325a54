package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gracechapel/roster-engine/pkg/auth"
	"github.com/gracechapel/roster-engine/pkg/models"
	"github.com/gracechapel/roster-engine/pkg/services"
)

// SpecialDayRequest for POST/PUT /api/special-days
type SpecialDayRequest struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Color       string `json:"color" validate:"required"`
}

// SpecialDayHandler handles special calendar day HTTP requests.
type SpecialDayHandler struct {
	specialDayService services.SpecialDayService
	logger            *zap.Logger
}

// NewSpecialDayHandler creates a new special day handler.
func NewSpecialDayHandler(specialDayService services.SpecialDayService, logger *zap.Logger) *SpecialDayHandler {
	return &SpecialDayHandler{specialDayService: specialDayService, logger: logger}
}

// RegisterRoutes registers the special day handler's routes on the given mux.
func (h *SpecialDayHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/special-days", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("GET /api/special-days/month", authMiddleware.RequireAuth(h.Month))
	mux.HandleFunc("POST /api/special-days", authMiddleware.RequireAdmin(h.Create))
	mux.HandleFunc("PUT /api/special-days/{id}", authMiddleware.RequireAdmin(h.Update))
	mux.HandleFunc("DELETE /api/special-days/{id}", authMiddleware.RequireAdmin(h.Delete))
}

// List handles GET /api/special-days
func (h *SpecialDayHandler) List(w http.ResponseWriter, r *http.Request) {
	days, err := h.specialDayService.List(r.Context())
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, days); err != nil {
		h.logger.Error("Failed to write special days response", zap.Error(err))
	}
}

// Month handles GET /api/special-days/month?year=&month=
func (h *SpecialDayHandler) Month(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeBadRequest(w, h.logger, "Invalid year")
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		writeBadRequest(w, h.logger, "Invalid month")
		return
	}

	days, err := h.specialDayService.Month(r.Context(), year, month)
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, days); err != nil {
		h.logger.Error("Failed to write special days response", zap.Error(err))
	}
}

// Create handles POST /api/special-days
func (h *SpecialDayHandler) Create(w http.ResponseWriter, r *http.Request) {
	day, ok := h.decode(w, r)
	if !ok {
		return
	}

	if err := h.specialDayService.Create(r.Context(), day); err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, day); err != nil {
		h.logger.Error("Failed to write special day response", zap.Error(err))
	}
}

// Update handles PUT /api/special-days/{id}
func (h *SpecialDayHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, h.logger, "Invalid special day id")
		return
	}

	day, ok := h.decode(w, r)
	if !ok {
		return
	}
	day.ID = id

	if err := h.specialDayService.Update(r.Context(), day); err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, day); err != nil {
		h.logger.Error("Failed to write special day response", zap.Error(err))
	}
}

// Delete handles DELETE /api/special-days/{id}
func (h *SpecialDayHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, h.logger, "Invalid special day id")
		return
	}

	if err := h.specialDayService.Delete(r.Context(), id); err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true}); err != nil {
		h.logger.Error("Failed to write special day response", zap.Error(err))
	}
}

func (h *SpecialDayHandler) decode(w http.ResponseWriter, r *http.Request) (*models.SpecialDay, bool) {
	var req SpecialDayRequest
	if !decodeAndValidate(w, r, h.logger, &req) {
		return nil, false
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeBadRequest(w, h.logger, "Invalid date")
		return nil, false
	}

	return &models.SpecialDay{
		Date:        date,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	}, true
}
