package events

import (
	"time"

	"github.com/spec-kit/staff-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLoginTokenIssued    EventType = "login_token_issued"
	EventPasswordResetIssued EventType = "password_reset_issued"
)

// EventTypeFor maps a token purpose to the event announcing its issuance.
func EventTypeFor(purpose domain.TokenPurpose) EventType {
	if purpose == domain.TokenPurposeReset {
		return EventPasswordResetIssued
	}
	return EventLoginTokenIssued
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	StaffID   string      `json:"staff_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TokenIssuedPayload carries what a notifier needs to deliver a one-time
// token. Token is the plaintext value and must not be logged.
type TokenIssuedPayload struct {
	Email     string              `json:"email"`
	Name      string              `json:"name"`
	Token     string              `json:"-"`
	Purpose   domain.TokenPurpose `json:"purpose"`
	ExpiresAt time.Time           `json:"expires_at"`
}
