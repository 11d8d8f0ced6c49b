package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/pairline/pairline-server/internal/auth"
	"github.com/pairline/pairline-server/internal/broker"
	brokermemory "github.com/pairline/pairline-server/internal/broker/memory"
	brokernats "github.com/pairline/pairline-server/internal/broker/nats"
	"github.com/pairline/pairline-server/internal/config"
	"github.com/pairline/pairline-server/internal/core"
	"github.com/pairline/pairline-server/internal/store"
	"github.com/pairline/pairline-server/internal/store/sqlite"
	transporthttp "github.com/pairline/pairline-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	ingest          *transporthttp.IngestHandler
	dispatcher      *core.Dispatcher
	broker          broker.Broker
	store           store.Store
	shutdownTimeout time.Duration
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	resolver, err := provisionUsers(st, cfg.Users, logger)
	if err != nil {
		st.Close()
		return nil, err
	}

	b, err := newBroker(cfg.Broker, logger)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init broker: %w", err)
	}

	registry := core.NewRegistry()
	dispatcher := core.NewDispatcher(registry, logger)
	server, ingest := transporthttp.NewServer(*cfg, resolver, registry, b, logger)

	return &App{
		server:          server,
		ingest:          ingest,
		dispatcher:      dispatcher,
		broker:          b,
		store:           st,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	if err := a.dispatcher.Run(ctx, a.broker); err != nil {
		a.cleanup()
		return fmt.Errorf("start dispatcher: %w", err)
	}
	a.ingest.StartRateReset(ctx.Done())

	serverErr := make(chan error, 1)
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

// provisionUsers seeds configured users into the store, then loads the full
// table into the resolver's immutable snapshot.
func provisionUsers(st store.Store, seed []config.SeedUser, logger *zerolog.Logger) (*auth.Resolver, error) {
	ctx := context.Background()

	for _, su := range seed {
		if err := st.UpsertUser(ctx, &store.User{
			ID:       su.ID,
			Username: su.Username,
			Token:    su.Token,
			RoomID:   su.RoomID,
		}); err != nil {
			return nil, fmt.Errorf("seed user %q: %w", su.Username, err)
		}
	}

	records, err := st.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	users := make([]*core.User, 0, len(records))
	for _, r := range records {
		users = append(users, &core.User{
			ID:       r.ID,
			Username: r.Username,
			Token:    r.Token,
			RoomID:   r.RoomID,
		})
	}

	logger.Info().Int("users", len(users)).Msg("user table loaded")
	return auth.NewResolver(users), nil
}

func newBroker(cfg config.BrokerConfig, logger *zerolog.Logger) (broker.Broker, error) {
	switch cfg.Driver {
	case "", "memory":
		return brokermemory.New(), nil
	case "nats":
		ncfg := brokernats.DefaultConfig()
		if cfg.URL != "" {
			ncfg.URL = cfg.URL
		}
		if cfg.Subject != "" {
			ncfg.Subject = cfg.Subject
		}
		return brokernats.Connect(ncfg, logger)
	default:
		return nil, fmt.Errorf("unknown broker driver %q", cfg.Driver)
	}
}

// cleanup closes the broker, database and other resources.
func (a *App) cleanup() {
	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close broker")
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
