// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package so internal details
// (DB errors, upstream bodies) never leak.
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// WithCode returns a copy carrying a machine-readable code.
func (e *APIError) WithCode(code string) *APIError {
	return &APIError{Detail: e.Detail, Code: code}
}

// ValidationError wraps per-field failures.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
