package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced to API callers.
const (
	CodeValidation       = "VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeConflict         = "CONFLICT"
	CodeSlugTaken        = "SLUG_TAKEN"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeSchemaMismatch   = "SCHEMA_MISMATCH"
	CodeNotConfigured    = "NOT_CONFIGURED"
	CodeAdminUnset       = "ADMIN_NOT_CONFIGURED"
	CodeInvalidState     = "INVALID_TRANSITION"
	CodeUpstream         = "UPSTREAM_FAILED"
	CodeInternal         = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

// NewSlugTaken reports a uniqueness violation on an update slug.
func NewSlugTaken(slug string) error {
	return NewDomainError(CodeSlugTaken,
		"slug already exists; change the slug so it is unique",
		http.StatusConflict, map[string]any{"slug": slug})
}

// NewPermissionDenied reports a row-level policy rejection from the store.
func NewPermissionDenied(message string, err error) error {
	return &DomainError{
		Code:       CodePermissionDenied,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
		Err:        err,
	}
}

// NewSchemaMismatch reports a column missing from the backing schema.
func NewSchemaMismatch(column string, err error) error {
	return &DomainError{
		Code:       CodeSchemaMismatch,
		Message:    fmt.Sprintf("column %q does not exist; apply the migrations (gmmctl migrate up)", column),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"column": column},
		Err:        err,
	}
}

// NewNotConfigured reports a subsystem disabled by missing configuration.
func NewNotConfigured(subsystem string) error {
	return NewDomainError(CodeNotConfigured,
		fmt.Sprintf("%s is not configured on this server", subsystem),
		http.StatusServiceUnavailable, map[string]any{"subsystem": subsystem})
}

// NewAdminNotConfigured reports that no admin secret is set.
func NewAdminNotConfigured() error {
	return NewDomainError(CodeAdminUnset,
		"ADMIN_PASSWORD is not configured; set it in the environment or .env",
		http.StatusServiceUnavailable, nil)
}

func NewInvalidTransition(message string, details map[string]any) error {
	return NewDomainError(CodeInvalidState, message, http.StatusConflict, details)
}

func NewUpstreamError(message string, err error) error {
	return &DomainError{
		Code:       CodeUpstream,
		Message:    message,
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// MapError converts generic errors to DomainError.
func MapError(err error) error {
	return ToDomainError(err)
}

// HasCode reports whether err carries the given DomainError code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
