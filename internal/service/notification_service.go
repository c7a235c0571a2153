package service

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/spec-kit/staff-service/internal/config"
	"github.com/spec-kit/staff-service/internal/domain"
	"github.com/spec-kit/staff-service/internal/email"
	"github.com/spec-kit/staff-service/internal/events"
	"github.com/spec-kit/staff-service/internal/observability"
)

const defaultRetryBase = 200 * time.Millisecond

// NotificationService delivers emailed one-time tokens.
type NotificationService struct {
	sender     email.Sender
	metrics    *observability.Metrics
	logger     *zap.Logger
	maxRetries uint64
	retryBase  time.Duration
}

// NewNotificationService creates the service.
func NewNotificationService(sender email.Sender, metrics *observability.Metrics, logger *zap.Logger, cfg config.EmailConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	retries := max(cfg.MaxRetries, 0)
	return &NotificationService{
		sender:     sender,
		metrics:    metrics,
		logger:     logger,
		maxRetries: uint64(retries),
		retryBase:  defaultRetryBase,
	}
}

// TokenEventTypes lists the events Handle understands.
var TokenEventTypes = []events.EventType{events.EventLoginTokenIssued, events.EventPasswordResetIssued}

// Handle emails the token carried by a token-issued event, retrying
// transient send failures with exponential backoff.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TokenIssuedPayload)
	if !ok {
		return fmt.Errorf("event %s: unexpected payload %T", event.ID, event.Payload)
	}

	subject, body := renderTokenEmail(payload)
	attempts := 0
	backoff := retry.WithMaxRetries(n.maxRetries, retry.NewExponential(n.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		if err := n.sender.Send(ctx, payload.Email, subject, body); err != nil {
			n.logger.Debug("email attempt failed", zap.Int("attempt", attempts), zap.Error(err))
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		n.metrics.RecordEmailFailure()
		return fmt.Errorf("deliver %s email to staff %s after %d attempts: %w", payload.Purpose, event.StaffID, attempts, err)
	}

	n.logger.Info("token email sent",
		zap.String("staff_id", event.StaffID),
		zap.String("event_type", string(event.Type)),
		zap.Int("attempts", attempts))
	return nil
}

func renderTokenEmail(p events.TokenIssuedPayload) (string, string) {
	name := html.EscapeString(p.Name)
	token := html.EscapeString(p.Token)
	validity := formatValidity(time.Until(p.ExpiresAt))

	if p.Purpose == domain.TokenPurposeReset {
		return "Password Reset Token", fmt.Sprintf(
			"<h1>Hello %s,</h1><p>Please use the token below to reset your password:</p><h2>%s</h2><p>This token is valid for %s.</p>",
			name, token, validity)
	}
	return "Login Token", fmt.Sprintf(
		"<h1>Hello %s,</h1><p>Please use the token below to login:</p><h2>%s</h2><p>This token is valid for %s.</p>",
		name, token, validity)
}

func formatValidity(d time.Duration) string {
	hours := int((d + 30*time.Minute) / time.Hour)
	switch {
	case hours <= 0:
		return "less than an hour"
	case hours == 1:
		return "1 hour"
	default:
		return fmt.Sprintf("%d hours", hours)
	}
}
