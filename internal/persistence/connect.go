package persistence

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

var (
	connectBackoffBase = 250 * time.Millisecond
	connectBackoffCap  = 5 * time.Second
)

// waitForServer pings until it succeeds, ctx ends or retries run out. The
// last ping error is returned.
func waitForServer(ctx context.Context, name string, retries int, ping func(context.Context) error, logger *zap.Logger) error {
	backoff := retry.WithMaxRetries(uint64(max(retries, 0)),
		retry.WithCappedDuration(connectBackoffCap, retry.NewExponential(connectBackoffBase)))

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := ping(ctx); err != nil {
			logger.Warn("waiting for "+name, zap.Int("attempt", attempt), zap.Error(err))
			return retry.RetryableError(err)
		}
		return nil
	})
}
