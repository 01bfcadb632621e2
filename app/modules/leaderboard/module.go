package leaderboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/Black-And-White-Club/advent-bot/app/eventbus"
	leaderboardservice "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/application"
	leaderboardfetcher "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/infrastructure/fetcher"
	leaderboardhandlers "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/infrastructure/handlers"
	leaderboardnotifier "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/infrastructure/notifier"
	leaderboarddb "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/infrastructure/repositories"
	leaderboardrouter "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/infrastructure/router"
	"github.com/Black-And-White-Club/advent-bot/config"
	"github.com/Black-And-White-Club/advent-bot/internal/observability"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Module represents the leaderboard module: the poll scheduler plus the bus
// handlers for link and role-grant traffic.
type Module struct {
	LeaderboardService leaderboardservice.Service
	Scheduler          *leaderboardservice.Scheduler
	LeaderboardRouter  *leaderboardrouter.LeaderboardRouter
	config             *config.Config
	observability      *observability.Observability
	cancelFunc         context.CancelFunc
}

// NewLeaderboardModule creates a new instance of the leaderboard module.
func NewLeaderboardModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	snapshotStore leaderboarddb.SnapshotStore,
	resolver leaderboardnotifier.Resolver,
	bus *eventbus.EventBus,
	router *message.Router,
) (*Module, error) {
	logger := obs.Logger
	metrics := obs.Metrics
	tracer := obs.Tracer

	fetcher := leaderboardfetcher.NewHTTPFetcher(cfg.AoC.SessionID, cfg.AoC.PollInterval, logger)

	notifier := leaderboardnotifier.NewWebhookNotifier(
		cfg.Discord.WebhookID,
		cfg.Discord.WebhookToken,
		cfg.Discord.Username,
		resolver,
		logger,
	)

	service := leaderboardservice.NewLeaderboardService(
		leaderboardservice.Config{
			LeaderboardID:    cfg.AoC.LeaderboardID,
			YearOverride:     cfg.AoC.Year,
			TotalDays:        cfg.AoC.TotalDays,
			RequireBothStars: cfg.AoC.RequireBothStars,
		},
		fetcher,
		snapshotStore,
		notifier,
		resolver,
		bus.Publisher,
		logger,
		metrics,
		tracer,
	)

	var roleGranter leaderboardnotifier.RoleGranter
	if cfg.Discord.BotToken != "" && cfg.Discord.CompletionRole != "" {
		roleGranter = leaderboardnotifier.NewDiscordRoleGranter(
			cfg.Discord.BotToken,
			cfg.Discord.GuildID,
			cfg.Discord.CompletionRole,
			logger,
		)
	}

	handlers := leaderboardhandlers.NewLeaderboardHandlers(service, notifier, roleGranter, logger, metrics, tracer)

	leaderboardRouter := leaderboardrouter.NewLeaderboardRouter(logger, router, bus, obs.Registry)
	if err := leaderboardRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure leaderboard router: %w", err)
	}

	return &Module{
		LeaderboardService: service,
		Scheduler:          leaderboardservice.NewScheduler(service, cfg.AoC.PollInterval, logger),
		LeaderboardRouter:  leaderboardRouter,
		config:             cfg,
		observability:      obs,
	}, nil
}

// Run drives the poll loop until the context is cancelled or the scheduler
// halts on a storage error.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting leaderboard module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if err := m.Scheduler.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("Leaderboard scheduler halted", "error", err)
	}
	logger.InfoContext(ctx, "Leaderboard module stopped")
}

// Close stops the leaderboard module and cleans up resources.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}
