package domain

import "time"

// TokenPurpose scopes a one-time token to a single flow.
type TokenPurpose string

const (
	TokenPurposeAuth  TokenPurpose = "auth"
	TokenPurposeReset TokenPurpose = "reset"
)

// Valid reports whether the purpose is known.
func (p TokenPurpose) Valid() bool {
	return p == TokenPurposeAuth || p == TokenPurposeReset
}

// LoginToken is a persisted one-time token. Only the SHA-256 hash of the
// emailed value is stored.
type LoginToken struct {
	ID        string
	StaffID   string
	TokenHash string
	Purpose   TokenPurpose
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Redeemable reports whether the token is unused and not yet expired at now.
func (t *LoginToken) Redeemable(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
