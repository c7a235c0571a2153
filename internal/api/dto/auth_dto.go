package dto

import "github.com/spec-kit/staff-service/internal/domain"

// RequestLoginRequest payload.
type RequestLoginRequest struct {
	Email string `json:"email"`
}

// LoginRequest redeems an emailed token.
type LoginRequest struct {
	Token string `json:"token"`
}

// RefreshRequest exchanges a refresh credential.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// PasswordResetRequest payload for initiating reset.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest payload for confirming reset.
type PasswordResetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Identity is the claim-bearing staff summary returned by login and
// getCurrentUser.
type Identity struct {
	ID        string           `json:"id"`
	FirstName string           `json:"firstname"`
	LastName  string           `json:"lastname"`
	Email     string           `json:"email"`
	Role      domain.StaffRole `json:"role"`
	Team      string           `json:"team"`
}

// NewIdentity maps a staff member to its identity summary.
func NewIdentity(s *domain.StaffMember) Identity {
	return Identity{
		ID:        s.ID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
		Role:      s.Role,
		Team:      s.Team,
	}
}

// LoginResponse carries the credential pair.
type LoginResponse struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refresh_token"`
	Staff        Identity `json:"staff"`
}
