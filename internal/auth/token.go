package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/staff-service/internal/domain"
)

const (
	DefaultAccessTTL  = 168 * time.Hour
	DefaultRefreshTTL = 672 * time.Hour
)

// Claims is the identity embedded in both access and refresh credentials.
type Claims struct {
	ID        string           `json:"id"`
	Role      domain.StaffRole `json:"role"`
	Email     string           `json:"email"`
	Team      string           `json:"team"`
	FirstName string           `json:"firstname"`
	LastName  string           `json:"lastname"`
	jwt.RegisteredClaims
}

// ClaimsFor shapes the claim set for a staff member.
func ClaimsFor(staff *domain.StaffMember) Claims {
	return Claims{
		ID:        staff.ID,
		Role:      staff.Role,
		Email:     staff.Email,
		Team:      staff.Team,
		FirstName: staff.FirstName,
		LastName:  staff.LastName,
	}
}

// TokenPair is the result of a successful mint.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// SessionMinter signs and verifies session credentials. Access and refresh
// credentials use independent secrets and lifetimes.
type SessionMinter struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewSessionMinter builds a minter. Non-positive TTLs fall back to 7 and 28 days.
func NewSessionMinter(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *SessionMinter {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &SessionMinter{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// Mint signs an access and a refresh credential for the staff member.
func (m *SessionMinter) Mint(staff *domain.StaffMember) (*TokenPair, error) {
	if len(m.accessSecret) == 0 || len(m.refreshSecret) == 0 {
		return nil, domain.ErrSigningKeyMissing
	}
	issuedAt := m.now()
	claims := ClaimsFor(staff)

	access, accessExp, err := m.sign(claims, m.accessSecret, issuedAt, m.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, refreshExp, err := m.sign(claims, m.refreshSecret, issuedAt, m.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Verify validates an access credential and returns its claims.
func (m *SessionMinter) Verify(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, m.accessSecret)
}

// VerifyRefresh validates a refresh credential and returns its claims.
func (m *SessionMinter) VerifyRefresh(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, m.refreshSecret)
}

func (m *SessionMinter) sign(claims Claims, secret []byte, issuedAt time.Time, ttl time.Duration) (string, time.Time, error) {
	expiresAt := issuedAt.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.ID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

func (m *SessionMinter) parse(tokenStr string, secret []byte) (*Claims, error) {
	if len(secret) == 0 {
		return nil, domain.ErrSigningKeyMissing
	}
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, errors.Join(domain.ErrInvalidCredential, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return nil, domain.ErrInvalidCredential
	}
	return claims, nil
}
