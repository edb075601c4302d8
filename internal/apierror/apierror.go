// Package apierror provides the response envelopes shared by every endpoint.
// All failures returned to clients go through this package so that internal
// details (DB errors, stack traces) never reach the response body.
package apierror

// APIError is the canonical envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func New(msg string) *APIError {
	return &APIError{Success: false, Error: msg}
}

// ValidationError wraps per-field validation failures.
type ValidationError struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Success: false, Error: "validation failed", Fields: fields}
}
