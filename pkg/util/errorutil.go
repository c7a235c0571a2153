package util

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/staff-service/internal/domain"
)

// Error codes rendered in the response envelope.
const (
	CodeAuthenticationRequired = "AUTHENTICATION_REQUIRED"
	CodeInvalidCredential      = "INVALID_OR_EXPIRED_CREDENTIAL"
	CodeAccessDenied           = "ACCESS_DENIED"
	CodeInvalidToken           = "INVALID_OR_EXPIRED_TOKEN"
	CodeLoginFailed            = "LOGIN_FAILED"
	CodeValidation             = "VALIDATION_FAILED"
	CodeNotFound               = "NOT_FOUND"
	CodeInternal               = "INTERNAL_ERROR"
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
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, details)
}

func NewAuthenticationRequired() error {
	return &DomainError{
		Code:       CodeAuthenticationRequired,
		Message:    "Authentication required",
		HTTPStatus: http.StatusUnauthorized,
		Err:        domain.ErrAuthenticationRequired,
	}
}

func NewInvalidCredential(err error) error {
	return &DomainError{
		Code:       CodeInvalidCredential,
		Message:    "Invalid or expired token",
		HTTPStatus: http.StatusUnauthorized,
		Err:        errors.Join(domain.ErrInvalidCredential, err),
	}
}

func NewAccessDenied() error {
	return &DomainError{
		Code:       CodeAccessDenied,
		Message:    "Access denied",
		HTTPStatus: http.StatusForbidden,
		Err:        domain.ErrAccessDenied,
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

type sentinelMapping struct {
	target  error
	code    string
	message string
	status  int
}

// Checked in order; a joined error matches the first sentinel it wraps.
var sentinels = []sentinelMapping{
	{domain.ErrAuthenticationRequired, CodeAuthenticationRequired, "Authentication required", http.StatusUnauthorized},
	{domain.ErrInvalidCredential, CodeInvalidCredential, "Invalid or expired token", http.StatusUnauthorized},
	{domain.ErrAccessDenied, CodeAccessDenied, "Access denied", http.StatusForbidden},
	{domain.ErrInvalidOrExpiredToken, CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized},
	{domain.ErrLoginFailed, CodeLoginFailed, "Login failed", http.StatusUnauthorized},
	{domain.ErrStaffNotFound, CodeNotFound, "Staff member not found", http.StatusNotFound},
	{domain.ErrEmailTaken, CodeValidation, "Email already registered", http.StatusBadRequest},
	{domain.ErrInvalidStaffID, CodeValidation, "Invalid staff ID", http.StatusBadRequest},
	{domain.ErrPasswordTooShort, CodeValidation, "Password must be at least 8 characters", http.StatusBadRequest},
	{domain.ErrPasswordTooLong, CodeValidation, "Password must be at most 72 bytes", http.StatusBadRequest},
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
	for _, m := range sentinels {
		if errors.Is(err, m.target) {
			return &DomainError{Code: m.code, Message: m.message, HTTPStatus: m.status, Err: err}
		}
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return validationFailure(validationErrs)
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return &DomainError{Code: codeForStatus(fiberErr.Code), Message: fiberErr.Message, HTTPStatus: fiberErr.Code}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &DomainError{Code: CodeNotFound, Message: "resource not found", HTTPStatus: http.StatusNotFound, Err: err}
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func validationFailure(errs validator.ValidationErrors) *DomainError {
	details := make(map[string]any, len(errs))
	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		field := strings.ToLower(fe.Field())
		details[field] = fe.Tag()
		fields = append(fields, field)
	}
	return &DomainError{
		Code:       CodeValidation,
		Message:    "invalid fields: " + strings.Join(fields, ", "),
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
		Err:        errs,
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeAuthenticationRequired
	case http.StatusForbidden:
		return CodeAccessDenied
	case http.StatusNotFound:
		return CodeNotFound
	default:
		if status >= 500 {
			return CodeInternal
		}
		return http.StatusText(status)
	}
}
