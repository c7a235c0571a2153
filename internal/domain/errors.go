package domain

import "errors"

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrInvalidCredential      = errors.New("invalid or expired credential")
	ErrAccessDenied           = errors.New("access denied")
	ErrInvalidOrExpiredToken  = errors.New("invalid or expired token")
	ErrLoginFailed            = errors.New("login failed")
	ErrSigningKeyMissing      = errors.New("signing secret not configured")

	ErrStaffNotFound  = errors.New("staff member not found")
	ErrEmailTaken     = errors.New("email already registered")
	ErrInvalidStaffID = errors.New("invalid staff id")

	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes")
)
