package common

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateAndDecode decodes the request body into payload and runs struct
// validation. On failure it returns a ValidationError carrying one detail
// line per failed field; the caller just forwards it.
func ValidateAndDecode(r *http.Request, payload interface{}) *AppError {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		return NewValidationError("Invalid request body")
	}

	if err := validate.Struct(payload); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		details := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			details = append(details, fe.Error())
		}
		return NewValidationError("Request validation failed", details...)
	}

	return nil
}
