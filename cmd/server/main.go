package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/listshare/todo-share/internal/api"
	"github.com/listshare/todo-share/internal/api/handler"
	"github.com/listshare/todo-share/internal/core/ports"
	"github.com/listshare/todo-share/internal/core/service"
	"github.com/listshare/todo-share/internal/infrastructure/config"
	"github.com/listshare/todo-share/internal/infrastructure/db/memory"
	"github.com/listshare/todo-share/internal/infrastructure/db/mongo"
	"github.com/listshare/todo-share/internal/infrastructure/db/postgres"
	redisstore "github.com/listshare/todo-share/internal/infrastructure/db/redis"
	"github.com/listshare/todo-share/internal/infrastructure/mail"
	"github.com/listshare/todo-share/internal/infrastructure/queue"
	"github.com/listshare/todo-share/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load(context.Background(), nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "todo-share",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
}

// backends holds every external resource the service was wired with.
type backends struct {
	users   ports.UserRepository
	lists   ports.ListRepository
	guard   ports.NotificationGuard
	revoker ports.TokenRevoker
	checks  map[string]handler.HealthCheck
	closers []func(context.Context) error
}

func (b *backends) close(ctx context.Context, log zerolog.Logger) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			log.Warn().Err(err).Msg("close backend")
		}
	}
}

func openBackends(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backends, error) {
	b := &backends{checks: map[string]handler.HealthCheck{}}

	switch cfg.StorageDriver {
	case config.DriverMongo:
		st, err := mongo.Open(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		b.users, b.lists = st.Users, st.Lists
		b.checks["mongodb"] = st.Ping
		b.closers = append(b.closers, st.Close)
	case config.DriverPostgres:
		st, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		b.users, b.lists = st.Users, st.Lists
		b.checks["postgres"] = st.Ping
		b.closers = append(b.closers, st.Close)
	default:
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		b.users, b.lists = memory.NewUserRepository(), memory.NewListRepository()
	}

	if cfg.Redis.Addr == "" {
		log.Warn().Msg("REDIS_ADDR not set; notification dedup and logout revocation are process-local")
		b.guard = memory.NewNotificationGuard(cfg.Notify.DedupTTL)
		b.revoker = memory.NewTokenRevoker()
		return b, nil
	}

	client, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		b.close(ctx, log)
		return nil, err
	}
	b.guard = redisstore.NewNotificationGuard(client, cfg.Notify.DedupTTL)
	b.revoker = redisstore.NewTokenRevoker(client)
	b.checks["redis"] = redisstore.Pinger(client)
	b.closers = append(b.closers, func(context.Context) error { return client.Close() })
	return b, nil
}

func newNotifier(cfg *config.Config, log zerolog.Logger) ports.Notifier {
	if cfg.SMTP.Host == "" {
		log.Warn().Msg("SMTP_HOST not set; notifications are logged, not mailed")
		return mail.NewLogNotifier(log)
	}
	return mail.NewMailer(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		Sender:   cfg.SMTP.Sender,
		Timeout:  cfg.Notify.Timeout,
	})
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open backends: %w", err)
	}

	// --- Notifications ---
	notifications := service.NewNotificationService(newNotifier(cfg, log), b.guard, log)
	dispatcher := queue.NewDispatcher(notifications, queue.Options{
		Workers:    cfg.Notify.Workers,
		BufferSize: cfg.Notify.QueueSize,
		Timeout:    cfg.Notify.Timeout,
	}, log)
	// Workers outlive the signal context; Stop drains them during shutdown.
	dispatcher.Start(context.WithoutCancel(ctx))

	// --- Services ---
	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(b.users, service.NewCredentials(cfg.BcryptCost), tokens, b.revoker, log)
	sharingService := service.NewSharingService(b.users, b.lists, dispatcher, log)

	e := api.NewRouter(api.Deps{
		Auth:         authService,
		Sharing:      sharingService,
		Tokens:       tokens,
		Revoker:      b.revoker,
		HealthChecks: b.checks,
		SecureCookie: cfg.IsProduction(),
		Log:          log,
	})
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 30 * time.Second
	e.Server.IdleTimeout = time.Minute

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err = <-serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if serr := e.Shutdown(shutdownCtx); serr != nil {
		log.Warn().Err(serr).Msg("http shutdown")
	}
	// Queued notifications are flushed before the stores they read from close.
	dispatcher.Stop()
	b.close(shutdownCtx, log)

	log.Info().Msg("server stopped")
	return err
}
