package persistence

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEngine struct {
	upErr      error
	downErr    error
	stepsErr   error
	steps      []int
	version    uint
	versionErr error
	closeErr   error
	closed     bool
}

func (f *fakeEngine) Up() error   { return f.upErr }
func (f *fakeEngine) Down() error { return f.downErr }
func (f *fakeEngine) Steps(n int) error {
	f.steps = append(f.steps, n)
	return f.stepsErr
}
func (f *fakeEngine) Version() (uint, bool, error) { return f.version, false, f.versionErr }
func (f *fakeEngine) Close() (error, error) {
	f.closed = true
	return nil, f.closeErr
}

func TestMigrationURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/staff?sslmode=disable", migrationURL("postgres://u:p@db:5432/staff?sslmode=disable"))
	assert.Equal(t, "pgx5://u@db/staff", migrationURL("postgresql://u@db/staff"))
	assert.Equal(t, "pgx5://already", migrationURL("pgx5://already"))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationsFS, "migrations/*.down.sql")
	require.NoError(t, err)

	assert.Len(t, ups, 2)
	assert.Len(t, downs, len(ups))
}

func TestMigrator_Up(t *testing.T) {
	engine := &fakeEngine{version: 2}
	m := &Migrator{m: engine, logger: zap.NewNop()}
	require.NoError(t, m.Up())

	engine.upErr = migrate.ErrNoChange
	require.NoError(t, m.Up())

	engine.upErr = errors.New("syntax error at or near")
	err := m.Up()
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, "MIGRATION_UP_FAILED", oopsErr.Code())
}

func TestMigrator_DownAndSteps(t *testing.T) {
	engine := &fakeEngine{}
	m := &Migrator{m: engine, logger: zap.NewNop()}

	require.NoError(t, m.Down())
	require.NoError(t, m.Steps(-1))
	assert.Equal(t, []int{-1}, engine.steps)

	engine.stepsErr = errors.New("no migration")
	assert.Error(t, m.Steps(3))
	engine.downErr = errors.New("locked")
	assert.Error(t, m.Down())
}

func TestMigrator_Version(t *testing.T) {
	engine := &fakeEngine{versionErr: migrate.ErrNilVersion}
	m := &Migrator{m: engine, logger: zap.NewNop()}

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)

	engine.versionErr = nil
	engine.version = 2
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
}

func TestMigrator_Close(t *testing.T) {
	boom := errors.New("conn busy")
	engine := &fakeEngine{closeErr: boom}
	m := &Migrator{m: engine, logger: zap.NewNop()}

	assert.ErrorIs(t, m.Close(), boom)
	assert.True(t, engine.closed)
}

func TestRunMigrations_RequiresDSN(t *testing.T) {
	assert.Error(t, RunMigrations("", zap.NewNop()))
}
