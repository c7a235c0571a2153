package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/spec-kit/staff-service/internal/domain"
)

const (
	loginTokenKeyPrefix = "lt"
	maxConsumeRetries   = 4
)

// redisLoginTokenRepository stores tokens as keys whose TTL matches the
// token expiry, so Redis performs the expiry sweep itself.
type redisLoginTokenRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisLoginTokenRepository constructs the Redis repository.
func NewRedisLoginTokenRepository(client *redis.Client) LoginTokenRepository {
	return &redisLoginTokenRepository{client: client, prefix: loginTokenKeyPrefix}
}

type redisLoginToken struct {
	ID        string              `json:"id"`
	StaffID   string              `json:"staff_id"`
	TokenHash string              `json:"token_hash"`
	Purpose   domain.TokenPurpose `json:"purpose"`
	ExpiresAt time.Time           `json:"expires_at"`
	Used      bool                `json:"used"`
	CreatedAt time.Time           `json:"created_at"`
}

func (r *redisLoginTokenRepository) tokenKey(hash string) string {
	return r.prefix + ":tok:" + hash
}

func (r *redisLoginTokenRepository) idKey(id string) string {
	return r.prefix + ":id:" + id
}

func (r *redisLoginTokenRepository) Create(ctx context.Context, token *domain.LoginToken) error {
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return oops.Code("LOGIN_TOKEN_CREATE_FAILED").Errorf("token already expired")
	}
	encoded, err := json.Marshal(redisLoginToken(*token))
	if err != nil {
		return oops.Code("LOGIN_TOKEN_ENCODE_FAILED").Wrap(err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.tokenKey(token.TokenHash), encoded, ttl)
		pipe.Set(ctx, r.idKey(token.ID), token.TokenHash, ttl)
		return nil
	})
	if err != nil {
		return oops.Code("LOGIN_TOKEN_CREATE_FAILED").
			With("staff_id", token.StaffID).
			With("purpose", string(token.Purpose)).
			Wrap(err)
	}
	return nil
}

func (r *redisLoginTokenRepository) FindActive(ctx context.Context, tokenHash string, purpose domain.TokenPurpose, now time.Time) (*domain.LoginToken, error) {
	data, err := r.client.Get(ctx, r.tokenKey(tokenHash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrInvalidOrExpiredToken
	}
	if err != nil {
		return nil, oops.Code("LOGIN_TOKEN_LOOKUP_FAILED").With("purpose", string(purpose)).Wrap(err)
	}
	token, err := decodeLoginToken(data)
	if err != nil {
		return nil, err
	}
	if token.Purpose != purpose || !token.Redeemable(now) {
		return nil, domain.ErrInvalidOrExpiredToken
	}
	return token, nil
}

func (r *redisLoginTokenRepository) MarkUsed(ctx context.Context, id string) error {
	hash, err := r.client.Get(ctx, r.idKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.ErrInvalidOrExpiredToken
	}
	if err != nil {
		return oops.Code("LOGIN_TOKEN_CONSUME_FAILED").With("id", id).Wrap(err)
	}
	key := r.tokenKey(hash)

	for i := 0; i < maxConsumeRetries; i++ {
		err = r.client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}
			token, err := decodeLoginToken(data)
			if err != nil {
				return err
			}
			if token.Used {
				return domain.ErrInvalidOrExpiredToken
			}
			ttl := time.Until(token.ExpiresAt)
			if ttl <= 0 {
				return domain.ErrInvalidOrExpiredToken
			}
			token.Used = true
			encoded, err := json.Marshal(redisLoginToken(*token))
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, encoded, ttl)
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		switch {
		case err == nil:
			return nil
		case errors.Is(err, redis.Nil), errors.Is(err, domain.ErrInvalidOrExpiredToken):
			return domain.ErrInvalidOrExpiredToken
		default:
			return oops.Code("LOGIN_TOKEN_CONSUME_FAILED").With("id", id).Wrap(err)
		}
	}
	return oops.Code("LOGIN_TOKEN_CONSUME_CONTENDED").With("id", id).Errorf("token %s contended after %d attempts", id, maxConsumeRetries)
}

// DeleteExpired is a no-op: key TTLs expire tokens.
func (r *redisLoginTokenRepository) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func decodeLoginToken(data []byte) (*domain.LoginToken, error) {
	var stored redisLoginToken
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decode login token: %w", err)
	}
	token := domain.LoginToken(stored)
	return &token, nil
}
