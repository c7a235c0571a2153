package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool is a DBTX that can open transactions.
type Pool interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repositories bundles the repositories handed to a unit of work.
type Repositories struct {
	Staff  StaffRepository
	Tokens LoginTokenRepository
}

// Store exposes repositories and a transactional boundary across them.
type Store interface {
	Repositories() Repositories
	WithinTx(ctx context.Context, fn func(Repositories) error) error
}

// PostgresStore keeps staff and, by default, tokens in Postgres.
type PostgresStore struct {
	pool   Pool
	tokens LoginTokenRepository
}

// NewPostgresStore builds a store whose token repository is Postgres-backed.
func NewPostgresStore(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// NewPostgresStoreWithTokens builds a store whose tokens live in an external
// repository (e.g. Redis). Token writes then happen outside the Postgres
// transaction opened by WithinTx.
func NewPostgresStoreWithTokens(pool Pool, tokens LoginTokenRepository) *PostgresStore {
	return &PostgresStore{pool: pool, tokens: tokens}
}

// Repositories returns pool-backed repositories.
func (s *PostgresStore) Repositories() Repositories {
	return s.bind(s.pool)
}

// WithinTx runs fn with transaction-bound repositories, committing when fn
// returns nil and rolling back otherwise.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(Repositories) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}
	if err := fn(s.bind(tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return errors.Join(err, oops.Code("TX_ROLLBACK_FAILED").Wrap(rbErr))
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}

func (s *PostgresStore) bind(db DBTX) Repositories {
	tokens := s.tokens
	if tokens == nil {
		tokens = NewLoginTokenRepository(db)
	}
	return Repositories{
		Staff:  NewStaffRepository(db),
		Tokens: tokens,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func wrapQueryError(code string, err error) error {
	if err == nil {
		return nil
	}
	return oops.Code(code).Wrap(err)
}
