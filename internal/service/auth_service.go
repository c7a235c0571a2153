package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/staff-service/internal/auth"
	"github.com/spec-kit/staff-service/internal/config"
	"github.com/spec-kit/staff-service/internal/domain"
	"github.com/spec-kit/staff-service/internal/events"
	"github.com/spec-kit/staff-service/internal/observability"
	"github.com/spec-kit/staff-service/internal/repository"
	apperrors "github.com/spec-kit/staff-service/pkg/util"
)

// LoginResult is returned by a successful login or refresh.
type LoginResult struct {
	Staff  *domain.StaffMember
	Tokens *auth.TokenPair
}

// AuthService coordinates the passwordless login and password reset flows.
type AuthService struct {
	store      repository.Store
	issuer     *auth.TokenIssuer
	minter     *auth.SessionMinter
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	bcryptCost int
	now        func() time.Time
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Store      repository.Store
	Issuer     *auth.TokenIssuer
	Minter     *auth.SessionMinter
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		store:      deps.Store,
		issuer:     deps.Issuer,
		minter:     deps.Minter,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
		now:        time.Now,
	}
}

// RequestLogin emails a one-time login token to an active staff member. The
// only error it returns is a validation error for a blank email; every
// other outcome, including unknown emails, is reported through logs only.
func (s *AuthService) RequestLogin(ctx context.Context, email string) error {
	return s.requestToken(ctx, email, domain.TokenPurposeAuth)
}

// RequestPasswordReset is RequestLogin for the reset purpose.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	return s.requestToken(ctx, email, domain.TokenPurposeReset)
}

func (s *AuthService) requestToken(ctx context.Context, email string, purpose domain.TokenPurpose) error {
	email = normalizeEmail(email)
	if email == "" {
		return apperrors.NewValidationError("Email is required", map[string]any{"email": "required"})
	}
	log := s.logger.With(zap.String("purpose", string(purpose)))

	staff, err := s.store.Repositories().Staff.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrStaffNotFound):
		log.Debug("token requested for unknown email")
		return nil
	case err != nil:
		log.Warn("token request lookup failed", zap.Error(err))
		return nil
	case !staff.Active:
		log.Info("token requested for inactive staff", zap.String("staff_id", staff.ID))
		return nil
	}

	value, record, err := s.issuer.Issue(ctx, staff.ID, purpose)
	if err != nil {
		log.Warn("token issue failed", zap.String("staff_id", staff.ID), zap.Error(err))
		return nil
	}
	s.metrics.RecordTokenIssued(string(purpose))

	if s.dispatcher == nil {
		return nil
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTypeFor(purpose),
		StaffID:   staff.ID,
		Timestamp: s.now(),
		Payload: events.TokenIssuedPayload{
			Email:     staff.Email,
			Name:      staff.FullName(),
			Token:     value,
			Purpose:   purpose,
			ExpiresAt: record.ExpiresAt,
		},
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		log.Warn("token delivery failed", zap.String("staff_id", staff.ID), zap.Error(err))
	}
	return nil
}

// CompleteLogin redeems an auth token and mints a credential pair. Token
// consumption, the last-login update and minting share one transaction.
func (s *AuthService) CompleteLogin(ctx context.Context, token string) (*LoginResult, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperrors.NewValidationError("Token is required", map[string]any{"token": "required"})
	}

	var result *LoginResult
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		issuer := s.issuer.WithRepository(repos.Tokens)
		record, err := issuer.Redeem(ctx, token, domain.TokenPurposeAuth)
		if err != nil {
			return err
		}
		if err := issuer.Consume(ctx, record.ID); err != nil {
			return err
		}

		staff, err := repos.Staff.TouchLastLogin(ctx, record.StaffID, s.now())
		if err != nil {
			return errors.Join(domain.ErrLoginFailed, err)
		}
		if !staff.Active {
			return domain.ErrLoginFailed
		}

		pair, err := s.minter.Mint(staff)
		if err != nil {
			return errors.Join(domain.ErrLoginFailed, err)
		}
		result = &LoginResult{Staff: staff, Tokens: pair}
		return nil
	})
	if err != nil {
		s.metrics.RecordLogin(observability.LoginOutcomeFailure)
		if !errors.Is(err, domain.ErrInvalidOrExpiredToken) && !errors.Is(err, domain.ErrLoginFailed) {
			err = errors.Join(domain.ErrLoginFailed, err)
		}
		s.logger.Info("login failed", zap.Error(err))
		return nil, err
	}

	s.metrics.RecordLogin(observability.LoginOutcomeSuccess)
	s.logger.Info("staff logged in", zap.String("staff_id", result.Staff.ID))
	return result, nil
}

// Refresh exchanges a refresh credential for a new pair. The staff member
// must still exist and be active.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := s.minter.VerifyRefresh(strings.TrimSpace(refreshToken))
	if err != nil {
		return nil, apperrors.NewInvalidCredential(err)
	}

	staff, err := s.store.Repositories().Staff.GetByID(ctx, claims.ID)
	if errors.Is(err, domain.ErrStaffNotFound) {
		return nil, apperrors.NewInvalidCredential(err)
	}
	if err != nil {
		return nil, err
	}
	if !staff.Active {
		return nil, apperrors.NewInvalidCredential(errors.New("staff inactive"))
	}

	pair, err := s.minter.Mint(staff)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Staff: staff, Tokens: pair}, nil
}

// CurrentUser reloads the staff record behind verified claims.
func (s *AuthService) CurrentUser(ctx context.Context, claims *auth.Claims) (*domain.StaffMember, error) {
	if claims == nil {
		return nil, apperrors.NewAuthenticationRequired()
	}
	return s.store.Repositories().Staff.GetByID(ctx, claims.ID)
}

// ResetPassword redeems a reset token and stores the new password hash in
// the same transaction that consumes the token.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if strings.TrimSpace(token) == "" {
		return apperrors.NewValidationError("Token is required", map[string]any{"token": "required"})
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}

	err = s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		issuer := s.issuer.WithRepository(repos.Tokens)
		record, err := issuer.Redeem(ctx, token, domain.TokenPurposeReset)
		if err != nil {
			return err
		}
		if err := issuer.Consume(ctx, record.ID); err != nil {
			return err
		}
		return repos.Staff.UpdatePassword(ctx, record.StaffID, hash)
	})
	if err != nil {
		return err
	}
	s.logger.Info("password reset completed")
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
