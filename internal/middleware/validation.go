package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// DecodeAndValidate decodes JSON request body and validates it
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return validate.Struct(v)
}

// ValidationMessage renders the first field failure as the envelope's error
// string, or a generic message for malformed JSON.
func ValidationMessage(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		e := validationErrors[0]
		return "\"" + e.Field() + "\" " + fieldErrorMessage(e)
	}
	return "invalid request body"
}

// RespondWithValidationError maps a decode/validation failure to 400.
func RespondWithValidationError(w http.ResponseWriter, err error) {
	RespondWithError(w, http.StatusBadRequest, ValidationMessage(err))
}

func fieldErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "is too short or too small (min " + e.Param() + ")"
	case "max":
		return "is too long or too large (max " + e.Param() + ")"
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "uuid":
		return "must be a valid id"
	default:
		return "is invalid"
	}
}
