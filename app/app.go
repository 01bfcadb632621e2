package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/advent-bot/api"
	"github.com/Black-And-White-Club/advent-bot/app/eventbus"
	"github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard"
	leaderboarddb "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/infrastructure/repositories"
	userservice "github.com/Black-And-White-Club/advent-bot/app/modules/user/application"
	userdb "github.com/Black-And-White-Club/advent-bot/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/advent-bot/config"
	"github.com/Black-And-White-Club/advent-bot/internal/observability"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// App wires the modules together: storage, event bus, leaderboard scheduler,
// user links, and the HTTP API.
type App struct {
	Config            *config.Config
	Observability     *observability.Observability
	EventBus          *eventbus.EventBus
	Router            *message.Router
	LeaderboardModule *leaderboard.Module
	UserService       userservice.Service

	db         *bun.DB
	httpServer *http.Server
}

// NewApp initializes the application with the necessary services and configuration.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	obs := observability.New(cfg.Observability.Environment)
	logger := obs.Logger
	wmLogger := watermill.NewSlogLogger(logger)

	var bus *eventbus.EventBus
	var err error
	if cfg.NATS.URL != "" {
		bus, err = eventbus.NewNATS(cfg.NATS.URL, wmLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize event bus: %w", err)
		}
	} else {
		bus = eventbus.NewInProcess(wmLogger)
	}

	app := &App{
		Config:        cfg,
		Observability: obs,
		EventBus:      bus,
	}

	var snapshotStore leaderboarddb.SnapshotStore
	switch cfg.Storage.Driver {
	case "postgres":
		pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Storage.DSN)))
		app.db = bun.NewDB(pgdb, pgdialect.New())
		snapshotStore = leaderboarddb.NewPGSnapshotStore(app.db)
	default:
		snapshotStore = leaderboarddb.NewFileSnapshotStore(cfg.Storage.DataDir)
	}

	var linkStore userdb.LinkStore
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		linkStore = userdb.NewRedisLinkStore(client)
	} else {
		linkStore = userdb.NewFileLinkStore(cfg.Storage.LinkFile)
	}

	app.UserService = userservice.NewUserService(linkStore, bus.Publisher, logger)

	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}
	app.Router = router

	app.LeaderboardModule, err = leaderboard.NewLeaderboardModule(
		ctx, cfg, obs, snapshotStore, app.UserService, bus, router,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize leaderboard module: %w", err)
	}

	apiServer := api.NewServer(
		app.LeaderboardModule.LeaderboardService,
		app.UserService,
		obs.Registry,
		cfg.AoC.TotalDays,
		logger,
	)
	app.httpServer = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           apiServer.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return app, nil
}

// Run starts the message router, the poll scheduler, and the HTTP listener,
// then blocks until the context is cancelled.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger

	routerErr := make(chan error, 1)
	go func() {
		routerErr <- app.Router.Run(ctx)
	}()

	select {
	case <-app.Router.Running():
	case err := <-routerErr:
		return fmt.Errorf("message router failed to start: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go app.LeaderboardModule.Run(ctx, &wg)

	httpErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening", "addr", app.httpServer.Addr)
		httpErr <- app.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-httpErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	wg.Wait()
	return nil
}

// Close shuts the application down in reverse startup order.
func (app *App) Close() error {
	logger := app.Observability.Logger

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}

	if err := app.LeaderboardModule.Close(); err != nil {
		logger.Error("Leaderboard module close failed", "error", err)
	}
	if err := app.Router.Close(); err != nil {
		logger.Error("Message router close failed", "error", err)
	}
	if err := app.EventBus.Close(); err != nil {
		logger.Error("Event bus close failed", "error", err)
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			logger.Error("Database close failed", "error", err)
		}
	}
	return nil
}
