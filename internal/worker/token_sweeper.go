package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/staff-service/internal/repository"
)

const (
	DefaultSweepSchedule = "@every 15m"
	sweepTimeout         = 30 * time.Second
)

// TokenSweeper periodically deletes expired one-time tokens.
type TokenSweeper struct {
	tokens   repository.LoginTokenRepository
	schedule string
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewTokenSweeper builds a sweeper. An empty schedule uses DefaultSweepSchedule.
func NewTokenSweeper(tokens repository.LoginTokenRepository, schedule string, logger *zap.Logger) *TokenSweeper {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	return &TokenSweeper{tokens: tokens, schedule: schedule, logger: logger, now: time.Now}
}

// Sweep deletes tokens that expired at or before now.
func (s *TokenSweeper) Sweep(ctx context.Context) (int64, error) {
	removed, err := s.tokens.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("expired login tokens swept", zap.Int64("removed", removed))
	}
	return removed, nil
}

// Start schedules Sweep. Overlapping runs are skipped.
func (s *TokenSweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("token sweeper already running")
	}

	log := cronLogger{s.logger.Sugar()}
	c := cron.New(cron.WithLogger(log), cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)))
	if _, err := c.AddFunc(s.schedule, s.run); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	s.running = true
	s.logger.Info("token sweeper started", zap.String("schedule", s.schedule))
	return nil
}

// Stop halts scheduling and waits for an in-flight sweep or ctx, whichever
// comes first.
func (s *TokenSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.running = false
	s.mu.Unlock()
	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *TokenSweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	if _, err := s.Sweep(ctx); err != nil {
		s.logger.Warn("token sweep failed", zap.Error(err))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
