package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/staff-service/internal/domain"
)

var loginTokenColumns = []string{"id", "staff_id", "token_hash", "purpose", "expires_at", "used", "created_at"}

func TestLoginTokenRepository_FindActive(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "active token",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`used=false AND expires_at > \$3\s+FOR UPDATE`).
					WithArgs("hash", domain.TokenPurposeAuth, now).
					WillReturnRows(pgxmock.NewRows(loginTokenColumns).
						AddRow("tok-1", "staff-1", "hash", domain.TokenPurposeAuth, now.Add(time.Hour), false, now))
			},
		},
		{
			name: "no matching row",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM login_tokens`).
					WithArgs("hash", domain.TokenPurposeAuth, now).
					WillReturnRows(pgxmock.NewRows(loginTokenColumns))
			},
			wantErr: domain.ErrInvalidOrExpiredToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()
			tt.setupMock(mock)

			token, err := NewLoginTokenRepository(mock).FindActive(context.Background(), "hash", domain.TokenPurposeAuth, now)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, token)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "tok-1", token.ID)
				assert.Equal(t, "staff-1", token.StaffID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLoginTokenRepository_MarkUsed(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "flips unused token", affected: 1},
		{name: "already used", affected: 0, wantErr: domain.ErrInvalidOrExpiredToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectExec(`UPDATE login_tokens SET used=true\s+WHERE id=\$1 AND used=false`).
				WithArgs("tok-1").
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))

			err = NewLoginTokenRepository(mock).MarkUsed(context.Background(), "tok-1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLoginTokenRepository_DeleteExpired(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectExec(`DELETE FROM login_tokens WHERE expires_at <= \$1`).
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	removed, err := NewLoginTokenRepository(mock).DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_WithinTx(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE login_tokens SET used=true`).
			WithArgs("tok-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		err = NewPostgresStore(mock).WithinTx(context.Background(), func(repos Repositories) error {
			return repos.Tokens.MarkUsed(context.Background(), "tok-1")
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE login_tokens SET used=true`).
			WithArgs("tok-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectRollback()

		mintErr := errors.New("mint failed")
		err = NewPostgresStore(mock).WithinTx(context.Background(), func(repos Repositories) error {
			if err := repos.Tokens.MarkUsed(context.Background(), "tok-1"); err != nil {
				return err
			}
			return mintErr
		})
		require.ErrorIs(t, err, mintErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
