package model

import "net/http"

// ErrorKind is the user-facing error taxonomy surfaced by the API.
type ErrorKind string

const (
	ErrValidation           ErrorKind = "VALIDATION_ERROR"
	ErrServiceNotConfigured ErrorKind = "SERVICE_NOT_CONFIGURED"
	ErrExternalService      ErrorKind = "EXTERNAL_SERVICE_ERROR"
	ErrInternal             ErrorKind = "INTERNAL_ERROR"
	ErrNotFound             ErrorKind = "NOT_FOUND"
	ErrVerificationFailed   ErrorKind = "VERIFICATION_FAILED"
)

// HTTPStatus maps an error kind to its response status code.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case ErrValidation:
		return http.StatusBadRequest
	case ErrServiceNotConfigured:
		return http.StatusServiceUnavailable
	case ErrExternalService:
		return http.StatusBadGateway
	case ErrNotFound:
		return http.StatusNotFound
	case ErrVerificationFailed:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// SubmissionOutcome is the tagged result of one full-submit attempt.
type SubmissionOutcome struct {
	Success        bool
	ContactID      string
	IsPrequalified bool

	// Set only on failure.
	Kind    ErrorKind
	Message string

	// Field-level detail for validation failures.
	FieldErrors []FieldError
}

// FieldError is a per-field validation failure with a human-readable message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SubmissionSuccess builds a successful outcome.
func SubmissionSuccess(contactID string, prequalified bool) SubmissionOutcome {
	return SubmissionOutcome{
		Success:        true,
		ContactID:      contactID,
		IsPrequalified: prequalified,
	}
}

// SubmissionFailure builds a failed outcome.
func SubmissionFailure(kind ErrorKind, message string) SubmissionOutcome {
	return SubmissionOutcome{Kind: kind, Message: message}
}
