package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeAndValidate decodes the JSON body into dst and runs struct
// validation. Writes the error response itself and returns false when the
// body is malformed or invalid.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, logger *zap.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeBadRequest(w, logger, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeBadRequest(w, logger, err.Error())
		return false
	}
	return true
}
