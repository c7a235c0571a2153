package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/staff-service/internal/domain"
	"github.com/spec-kit/staff-service/internal/repository"
)

const (
	DefaultLoginTokenTTL   = 24 * time.Hour
	DefaultLoginTokenBytes = 16
	minLoginTokenBytes     = 3
)

// TokenIssuer owns the lifecycle of emailed one-time tokens.
type TokenIssuer struct {
	tokens repository.LoginTokenRepository
	ttl    time.Duration
	size   int
	now    func() time.Time
}

// NewTokenIssuer builds an issuer. size is the number of random bytes, hex
// encoded into the emailed value.
func NewTokenIssuer(tokens repository.LoginTokenRepository, ttl time.Duration, size int) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultLoginTokenTTL
	}
	if size < minLoginTokenBytes {
		size = DefaultLoginTokenBytes
	}
	return &TokenIssuer{tokens: tokens, ttl: ttl, size: size, now: time.Now}
}

// WithRepository returns a copy bound to another repository, typically one
// scoped to a transaction.
func (i *TokenIssuer) WithRepository(tokens repository.LoginTokenRepository) *TokenIssuer {
	clone := *i
	clone.tokens = tokens
	return &clone
}

// Issue generates and persists a token for the staff member. The plaintext
// value is returned for delivery and never stored.
func (i *TokenIssuer) Issue(ctx context.Context, staffID string, purpose domain.TokenPurpose) (string, *domain.LoginToken, error) {
	if !purpose.Valid() {
		return "", nil, fmt.Errorf("unknown token purpose %q", purpose)
	}
	raw := make([]byte, i.size)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	value := hex.EncodeToString(raw)

	now := i.now()
	record := &domain.LoginToken{
		ID:        uuid.NewString(),
		StaffID:   staffID,
		TokenHash: HashToken(value),
		Purpose:   purpose,
		ExpiresAt: now.Add(i.ttl),
		Used:      false,
		CreatedAt: now,
	}
	if err := i.tokens.Create(ctx, record); err != nil {
		return "", nil, fmt.Errorf("store token: %w", err)
	}
	return value, record, nil
}

// Redeem finds an unused, unexpired token matching value and purpose. It does
// not consume the token.
func (i *TokenIssuer) Redeem(ctx context.Context, value string, purpose domain.TokenPurpose) (*domain.LoginToken, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return nil, domain.ErrInvalidOrExpiredToken
	}
	now := i.now()
	record, err := i.tokens.FindActive(ctx, HashToken(value), purpose, now)
	if err != nil {
		return nil, err
	}
	if !record.Redeemable(now) {
		return nil, domain.ErrInvalidOrExpiredToken
	}
	return record, nil
}

// Consume marks the token used. A token that is already used yields
// ErrInvalidOrExpiredToken.
func (i *TokenIssuer) Consume(ctx context.Context, tokenID string) error {
	return i.tokens.MarkUsed(ctx, tokenID)
}

// HashToken returns the hex SHA-256 of a token value.
func HashToken(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
