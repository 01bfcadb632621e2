package leaderboardhandlers

import (
	"log/slog"

	leaderboardservice "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/application"
	leaderboardnotifier "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/infrastructure/notifier"
	"github.com/Black-And-White-Club/advent-bot/internal/observability"
	"go.opentelemetry.io/otel/trace"
)

// LeaderboardHandlers handles leaderboard-related events.
type LeaderboardHandlers struct {
	leaderboardService leaderboardservice.Service
	notifier           leaderboardnotifier.Notifier
	roleGranter        leaderboardnotifier.RoleGranter
	logger             *slog.Logger
	metrics            *observability.Metrics
	tracer             trace.Tracer
}

// NewLeaderboardHandlers creates a new instance of LeaderboardHandlers.
func NewLeaderboardHandlers(
	leaderboardService leaderboardservice.Service,
	notifier leaderboardnotifier.Notifier,
	roleGranter leaderboardnotifier.RoleGranter,
	logger *slog.Logger,
	metrics *observability.Metrics,
	tracer trace.Tracer,
) Handlers {
	return &LeaderboardHandlers{
		leaderboardService: leaderboardService,
		notifier:           notifier,
		roleGranter:        roleGranter,
		logger:             logger,
		metrics:            metrics,
		tracer:             tracer,
	}
}
