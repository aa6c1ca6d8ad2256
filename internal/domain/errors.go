package domain

// APIError is the RFC 7807 problem body returned by every failing endpoint.
// Errors maps JSON field names to messages for validation failures.
type APIError struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// Problem types
const (
	ErrorTypeValidation   = "validation_error"
	ErrorTypeNotFound     = "not_found"
	ErrorTypeBadRequest   = "bad_request"
	ErrorTypeConflict     = "conflict"
	ErrorTypeInvalidState = "invalid_state"
	ErrorTypeUnauthorized = "unauthorized"
	ErrorTypeForbidden    = "forbidden"
	ErrorTypeInternal     = "internal_error"
)

// validationMessages covers the validator tags whose message does not
// depend on the tag parameter
var validationMessages = map[string]string{
	"email":            "Must be a valid email address",
	"url":              "Must be a valid URL",
	"phone":            "Must be a valid phone number",
	"hexcolor":         "Must be a hexadecimal color such as #1A2B3C",
	"gtefield":         "Must not be before the related field",
	"required_if":      "This field is required for the selected type",
	"required_without": "This field is required when the related field is missing",
}

// GetValidationMessage returns a human-readable message for a validation tag
func GetValidationMessage(tag string) string {
	if msg, ok := validationMessages[tag]; ok {
		return msg
	}
	return "Validation failed: " + tag
}
