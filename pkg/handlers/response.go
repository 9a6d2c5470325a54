package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/gracechapel/roster-engine/pkg/apperrors"
)

// ApiResponse is the standard success envelope.
type ApiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// ServiceError maps an error from the service layer to its HTTP response.
// Unrecognized errors are logged and surfaced as 500s with a generic body.
func ServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var status int
	var code string

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		status, code = http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperrors.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, apperrors.ErrDuplicateAssignment):
		status, code = http.StatusConflict, "duplicate_assignment"
	case errors.Is(err, apperrors.ErrRoleCapacityExceeded):
		status, code = http.StatusConflict, "role_capacity_exceeded"
	case errors.Is(err, apperrors.ErrConflictOnDelete):
		status, code = http.StatusConflict, "conflict_on_delete"
	// Soft notice: the UI shows a dialog for this code rather than an
	// error toast, so it must stay distinguishable from hard conflicts.
	case errors.Is(err, apperrors.ErrDeadlinePassed):
		status, code = http.StatusConflict, "deadline_passed"
	case errors.Is(err, apperrors.ErrLastAdmin):
		status, code = http.StatusConflict, "last_admin"
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		status, code = http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, apperrors.ErrUnauthorized):
		status, code = http.StatusForbidden, "forbidden"
	default:
		logger.Error("Unhandled service error", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Internal server error"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if writeErr := ErrorResponse(w, status, code, err.Error()); writeErr != nil {
		logger.Error("Failed to write error response", zap.Error(writeErr))
	}
}

// ParseYearMonth reads {year} and {month} path values. Writes the error
// response itself and returns ok=false when either is malformed.
func ParseYearMonth(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int, int, bool) {
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil {
		writeBadRequest(w, logger, "Invalid year")
		return 0, 0, false
	}
	month, err := strconv.Atoi(r.PathValue("month"))
	if err != nil || month < 1 || month > 12 {
		writeBadRequest(w, logger, "Invalid month")
		return 0, 0, false
	}
	return year, month, true
}

func writeBadRequest(w http.ResponseWriter, logger *zap.Logger, message string) {
	if err := ErrorResponse(w, http.StatusBadRequest, "validation_error", message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}
