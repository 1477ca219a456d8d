// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
// The dashboard clients read the message from "msg".
type APIError struct {
	Msg string `json:"msg"`
}

func New(msg string) *APIError {
	return &APIError{Msg: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Msg    string            `json:"msg"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Msg: "Validation failed", Fields: fields}
}
