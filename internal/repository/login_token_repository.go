package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/spec-kit/staff-service/internal/domain"
)

// LoginTokenRepository manages one-time token persistence.
type LoginTokenRepository interface {
	Create(ctx context.Context, token *domain.LoginToken) error
	// FindActive returns the unused, unexpired token with the given hash and
	// purpose, or domain.ErrInvalidOrExpiredToken.
	FindActive(ctx context.Context, tokenHash string, purpose domain.TokenPurpose, now time.Time) (*domain.LoginToken, error)
	// MarkUsed flips used from false to true. Already used or missing tokens
	// yield domain.ErrInvalidOrExpiredToken.
	MarkUsed(ctx context.Context, id string) error
	// DeleteExpired removes tokens whose expiry is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type loginTokenRepository struct {
	db DBTX
}

// NewLoginTokenRepository constructs the Postgres repository.
func NewLoginTokenRepository(db DBTX) LoginTokenRepository {
	return &loginTokenRepository{db: db}
}

func (r *loginTokenRepository) Create(ctx context.Context, token *domain.LoginToken) error {
	const query = `
        INSERT INTO login_tokens (id, staff_id, token_hash, purpose, expires_at, used, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.db.Exec(ctx, query,
		token.ID,
		token.StaffID,
		token.TokenHash,
		token.Purpose,
		token.ExpiresAt,
		token.Used,
		token.CreatedAt,
	)
	if err != nil {
		return oops.Code("LOGIN_TOKEN_CREATE_FAILED").
			With("staff_id", token.StaffID).
			With("purpose", string(token.Purpose)).
			Wrap(err)
	}
	return nil
}

func (r *loginTokenRepository) FindActive(ctx context.Context, tokenHash string, purpose domain.TokenPurpose, now time.Time) (*domain.LoginToken, error) {
	// FOR UPDATE serializes concurrent redemptions when running inside a transaction.
	const query = `
        SELECT id, staff_id, token_hash, purpose, expires_at, used, created_at
        FROM login_tokens
        WHERE token_hash=$1 AND purpose=$2 AND used=false AND expires_at > $3
        FOR UPDATE`
	var token domain.LoginToken
	err := r.db.QueryRow(ctx, query, tokenHash, purpose, now).Scan(
		&token.ID,
		&token.StaffID,
		&token.TokenHash,
		&token.Purpose,
		&token.ExpiresAt,
		&token.Used,
		&token.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInvalidOrExpiredToken
	}
	if err != nil {
		return nil, oops.Code("LOGIN_TOKEN_LOOKUP_FAILED").With("purpose", string(purpose)).Wrap(err)
	}
	return &token, nil
}

func (r *loginTokenRepository) MarkUsed(ctx context.Context, id string) error {
	const query = `
        UPDATE login_tokens SET used=true
        WHERE id=$1 AND used=false`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return oops.Code("LOGIN_TOKEN_CONSUME_FAILED").With("id", id).Wrap(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInvalidOrExpiredToken
	}
	return nil
}

func (r *loginTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM login_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, oops.Code("LOGIN_TOKEN_SWEEP_FAILED").Wrap(err)
	}
	return cmd.RowsAffected(), nil
}
