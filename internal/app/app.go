package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/huddlehq/huddle-server/internal/archive/kafka"
	"github.com/huddlehq/huddle-server/internal/auth"
	"github.com/huddlehq/huddle-server/internal/callengine/livekit"
	"github.com/huddlehq/huddle-server/internal/config"
	"github.com/huddlehq/huddle-server/internal/core"
	"github.com/huddlehq/huddle-server/internal/store"
	"github.com/huddlehq/huddle-server/internal/store/redis"
	"github.com/huddlehq/huddle-server/internal/store/sqlite"
	transporthttp "github.com/huddlehq/huddle-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	closers         []namedCloser
	log             *zerolog.Logger
}

type namedCloser struct {
	name string
	c    io.Closer
}

// statusWriter adapts a store.StatusStore to the hub's typed interface.
type statusWriter struct {
	store store.StatusStore
}

func (w statusWriter) SetUserStatus(ctx context.Context, user core.UserID, status core.Status) error {
	return w.store.SetUserStatus(ctx, string(user), string(status))
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	a := &App{
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}

	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	a.closers = append(a.closers, namedCloser{name: "store", c: st})
	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.JWTTTL,
	}
	authService := auth.NewService(st, jwtConfig)

	hubOpts := []core.Option{core.WithLogger(logger)}
	var serverOpts []transporthttp.ServerOption

	switch cfg.StatusBackend {
	case config.StatusBackendSQLite:
		hubOpts = append(hubOpts, core.WithStatusWriter(statusWriter{store: st}))
	case config.StatusBackendRedis:
		rs, err := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			a.cleanup()
			return nil, fmt.Errorf("init redis status store: %w", err)
		}
		a.closers = append(a.closers, namedCloser{name: "redis", c: rs})
		hubOpts = append(hubOpts, core.WithStatusWriter(statusWriter{store: rs}))
		serverOpts = append(serverOpts, transporthttp.WithStatusReader(rs), transporthttp.WithStatusStore(rs))
		logger.Info().Str("addr", cfg.RedisAddr).Msg("redis status store connected")
	}

	if len(cfg.KafkaBrokers) > 0 {
		sink := kafka.New(cfg.KafkaBrokers, cfg.KafkaTopic)
		a.closers = append(a.closers, namedCloser{name: "kafka", c: sink})
		hubOpts = append(hubOpts, core.WithMessageSink(sink))
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("message archive enabled")
	}

	if cfg.LiveKit.Enabled {
		engine := livekit.New(cfg.LiveKit.APIKey, cfg.LiveKit.APISecret, cfg.LiveKit.URL)
		serverOpts = append(serverOpts, transporthttp.WithCallEngine(engine))
		logger.Info().Str("url", cfg.LiveKit.URL).Msg("media relay enabled")
	}

	a.hub = core.NewHub(hubOpts...)
	a.server = transporthttp.NewServer(a.hub, authService, st, cfg, logger, serverOpts...)

	return a, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	hubCtx, stopHub := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		a.hub.Run(hubCtx)
	}()

	a.log.Info().Str("addr", a.server.Addr).Msg("starting huddle server")
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	// The hub outlives the HTTP server so open connections see it stop
	// before the stores they persist to are closed.
	defer func() {
		stopHub()
		<-hubDone
		a.cleanup()
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-serverErr
	}
}

// cleanup closes database and other resources in reverse order of creation.
func (a *App) cleanup() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		nc := a.closers[i]
		if err := nc.c.Close(); err != nil {
			a.log.Warn().Err(err).Str("resource", nc.name).Msg("failed to close")
		} else {
			a.log.Info().Str("resource", nc.name).Msg("closed")
		}
	}
	a.closers = nil
}
