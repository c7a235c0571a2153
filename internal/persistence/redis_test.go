package persistence

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/staff-service/internal/config"
)

func TestNewRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	rdb, err := NewRedis(ctx, config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	require.NoError(t, err)
	defer rdb.Close()

	assert.NoError(t, rdb.Ping(ctx))

	mr.Close()
	assert.Error(t, rdb.Ping(ctx))
}

func TestNewRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedis(context.Background(), config.RedisConfig{Addr: addr}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewRedis_Password(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("s3cret")
	ctx := context.Background()

	_, err := NewRedis(ctx, config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	assert.Error(t, err)

	rdb, err := NewRedis(ctx, config.RedisConfig{Addr: mr.Addr(), Password: "s3cret"}, zap.NewNop())
	require.NoError(t, err)
	rdb.Close()
}

func TestRedis_NilPing(t *testing.T) {
	var r *Redis
	assert.Error(t, r.Ping(context.Background()))
	assert.NotPanics(t, r.Close)
}

func TestRedisOptions(t *testing.T) {
	opts, err := redisOptions(config.RedisConfig{Addr: "cache:6379", Password: "pw", DB: 3})
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 3, opts.DB)

	opts, err = redisOptions(config.RedisConfig{URL: "redis://:secret@cache.internal:6380/2", Addr: "ignored:1"})
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	_, err = redisOptions(config.RedisConfig{URL: "http://cache"})
	assert.Error(t, err)
}

func TestNewRedis_URL(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := NewRedis(context.Background(), config.RedisConfig{URL: "redis://" + mr.Addr() + "/0"}, zap.NewNop())
	require.NoError(t, err)
	rdb.Close()
}
