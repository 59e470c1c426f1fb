package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mavihs13/edunet-realtime/internal/auth"
	"github.com/mavihs13/edunet-realtime/internal/buffer"
	"github.com/mavihs13/edunet-realtime/internal/config"
	"github.com/mavihs13/edunet-realtime/internal/core"
	"github.com/mavihs13/edunet-realtime/internal/store"
	"github.com/mavihs13/edunet-realtime/internal/store/sqlite"
	transporthttp "github.com/mavihs13/edunet-realtime/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.Store
	redis           *redis.Client
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	limits := buffer.Limits{
		MaxItems: cfg.BufferMaxItems,
		TTL:      cfg.BufferTTL,
	}

	var (
		buf buffer.Buffer
		rdb *redis.Client
	)
	if cfg.RedisURL != "" {
		rdb, err = buffer.NewRedisClient(context.Background(), cfg.RedisURL, 5*time.Second)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("init redis: %w", err)
		}
		buf = buffer.NewRedis(rdb, limits)
		logger.Info().Msg("offline buffer backed by redis")
	} else {
		buf = buffer.NewMemory(limits)
		logger.Warn().Msg("offline buffer is in-process; buffered items will not survive restarts or scale across instances")
	}

	jwtConfig := &auth.Config{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      24 * time.Hour,
	}

	hub := core.NewHub(st, buf, logger)
	server := transporthttp.NewServer(hub, jwtConfig, buf, *cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		redis:           rdb,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.hub.Run(ctx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes the database and buffer backends.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close redis client")
		}
	}
}
