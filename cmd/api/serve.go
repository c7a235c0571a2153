package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/staff-service/internal/api/http"
	"github.com/spec-kit/staff-service/internal/api/http/handlers"
	"github.com/spec-kit/staff-service/internal/auth"
	"github.com/spec-kit/staff-service/internal/config"
	"github.com/spec-kit/staff-service/internal/email"
	"github.com/spec-kit/staff-service/internal/events"
	"github.com/spec-kit/staff-service/internal/observability"
	"github.com/spec-kit/staff-service/internal/persistence"
	"github.com/spec-kit/staff-service/internal/repository"
	"github.com/spec-kit/staff-service/internal/service"
	"github.com/spec-kit/staff-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime(true)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, logger)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
			return err
		}
	}

	readiness := []handlers.Dependency{{Name: "postgres", Pinger: pg}}

	var store *repository.PostgresStore
	var sweeper *worker.TokenSweeper
	switch cfg.Auth.TokenStore {
	case config.TokenStoreRedis:
		rdb, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return err
		}
		defer rdb.Close()
		readiness = append(readiness, handlers.Dependency{Name: "redis", Pinger: rdb})
		store = repository.NewPostgresStoreWithTokens(pg.PoolHandle(), repository.NewRedisLoginTokenRepository(rdb.Client))
	default:
		store = repository.NewPostgresStore(pg.PoolHandle())
		sweeper = worker.NewTokenSweeper(store.Repositories().Tokens, cfg.Auth.TokenSweepSchedule, logger)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	sender, err := email.NewSender(cfg.Email, logger)
	if err != nil {
		return err
	}
	notifier := service.NewNotificationService(sender, metrics, logger, cfg.Email)
	notifications := worker.NewNotificationWorker(notifier.Handle, worker.DefaultNotificationWorkers, worker.DefaultNotificationQueue, logger)
	dispatcher := events.NewInMemoryDispatcher()
	notifications.Subscribe(dispatcher, service.TokenEventTypes...)
	notifications.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := notifications.Stop(stopCtx); err != nil {
			logger.Warn("notification worker stop", zap.Error(err))
		}
	}()

	minter := auth.NewSessionMinter(cfg.Auth.JWTSecret, cfg.Auth.RefreshSecret, cfg.Auth.AccessTTL(), cfg.Auth.RefreshTTL())
	issuer := auth.NewTokenIssuer(store.Repositories().Tokens, cfg.Auth.LoginTokenTTL(), cfg.Auth.LoginTokenBytes)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		Store:      store,
		Issuer:     issuer,
		Minter:     minter,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	staffService := service.NewStaffService(cfg.Auth, store, logger)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness...),
		Auth:           handlers.NewAuthHandler(authService),
		Staff:          handlers.NewStaffHandler(staffService),
		AuthMiddleware: auth.NewAuthMiddleware(minter),
		Gatherer:       registry,
	})

	if sweeper != nil {
		if err := sweeper.Start(); err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := sweeper.Stop(stopCtx); err != nil {
				logger.Warn("token sweeper stop", zap.Error(err))
			}
		}()
	}

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()), zap.String("token_store", cfg.Auth.TokenStore))
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-listenErr:
		return err
	case <-ctx.Done():
		logger.Info("shutting down", zap.Error(context.Cause(ctx)))
	}

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
