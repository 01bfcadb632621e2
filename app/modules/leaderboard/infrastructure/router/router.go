package leaderboardrouter

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/advent-bot/app/eventbus"
	"github.com/Black-And-White-Club/advent-bot/app/events"
	leaderboardhandlers "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/infrastructure/handlers"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// LeaderboardRouter binds the module's bus topics to their handlers.
type LeaderboardRouter struct {
	logger         *slog.Logger
	Router         *message.Router
	bus            *eventbus.EventBus
	metricsBuilder *metrics.PrometheusMetricsBuilder
}

func NewLeaderboardRouter(
	logger *slog.Logger,
	router *message.Router,
	bus *eventbus.EventBus,
	prometheusRegistry *prometheus.Registry,
) *LeaderboardRouter {
	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "", "")
		metricsBuilder = &builder
	}

	return &LeaderboardRouter{
		logger:         logger,
		Router:         router,
		bus:            bus,
		metricsBuilder: metricsBuilder,
	}
}

// Configure sets up the middlewares and registers all module-specific event handlers.
func (r *LeaderboardRouter) Configure(ctx context.Context, handlers leaderboardhandlers.Handlers) error {
	if r.metricsBuilder != nil {
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)

	return r.RegisterHandlers(ctx, handlers)
}

// RegisterHandlers binds specific event topics to their corresponding handler logic.
func (r *LeaderboardRouter) RegisterHandlers(ctx context.Context, handlers leaderboardhandlers.Handlers) error {
	r.logger.InfoContext(ctx, "Registering leaderboard event handlers")

	r.Router.AddHandler(
		"leaderboard."+events.UserLinked,
		events.UserLinked,
		r.bus.Subscriber,
		events.RoleGrantRequested,
		r.bus.Publisher,
		handlers.HandleUserLinked,
	)

	r.Router.AddNoPublisherHandler(
		"leaderboard."+events.UserUnlinked,
		events.UserUnlinked,
		r.bus.Subscriber,
		func(msg *message.Message) error {
			_, err := handlers.HandleUserUnlinked(msg)
			return err
		},
	)

	r.Router.AddNoPublisherHandler(
		"leaderboard."+events.RoleGrantRequested,
		events.RoleGrantRequested,
		r.bus.Subscriber,
		func(msg *message.Message) error {
			_, err := handlers.HandleRoleGrantRequested(msg)
			return err
		},
	)

	return nil
}

// Close stops the router and cleans up resources.
func (r *LeaderboardRouter) Close() error {
	return r.Router.Close()
}
