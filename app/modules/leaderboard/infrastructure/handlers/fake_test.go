package leaderboardhandlers

import (
	"context"
	"io"
	"log/slog"

	leaderboardservice "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/application"
	leaderboarddomain "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/domain"
	leaderboardnotifier "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/infrastructure/notifier"
	"github.com/Black-And-White-Club/advent-bot/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace/noop"
)

// ------------------------
// Fake Service
// ------------------------

type FakeService struct {
	RunCycleFunc        func(ctx context.Context) (leaderboardservice.CycleResult, error)
	CurrentSnapshotFunc func(ctx context.Context) (leaderboarddomain.Snapshot, error)
	MemberCompletedFunc func(ctx context.Context, memberID leaderboarddomain.MemberID) (bool, error)
}

func (f *FakeService) RunCycle(ctx context.Context) (leaderboardservice.CycleResult, error) {
	return f.RunCycleFunc(ctx)
}

func (f *FakeService) CurrentSnapshot(ctx context.Context) (leaderboarddomain.Snapshot, error) {
	if f.CurrentSnapshotFunc == nil {
		return leaderboarddomain.NewSnapshot("99", "2023"), nil
	}
	return f.CurrentSnapshotFunc(ctx)
}

func (f *FakeService) MemberCompleted(ctx context.Context, memberID leaderboarddomain.MemberID) (bool, error) {
	return f.MemberCompletedFunc(ctx, memberID)
}

// ------------------------
// Fake Notifier
// ------------------------

type FakeNotifier struct {
	CompletionsFunc func(ctx context.Context, events []leaderboarddomain.CompletionEvent) []leaderboardnotifier.DeliveryResult
	Completions     [][]leaderboarddomain.CompletionEvent
	Achievements    [][]leaderboarddomain.AchievementEvent
}

func (f *FakeNotifier) AnnounceAchievements(ctx context.Context, events []leaderboarddomain.AchievementEvent) []leaderboardnotifier.DeliveryResult {
	f.Achievements = append(f.Achievements, events)
	return make([]leaderboardnotifier.DeliveryResult, len(events))
}

func (f *FakeNotifier) AnnounceCompletions(ctx context.Context, events []leaderboarddomain.CompletionEvent) []leaderboardnotifier.DeliveryResult {
	f.Completions = append(f.Completions, events)
	if f.CompletionsFunc != nil {
		return f.CompletionsFunc(ctx, events)
	}
	return make([]leaderboardnotifier.DeliveryResult, len(events))
}

// ------------------------
// Fake RoleGranter
// ------------------------

type FakeRoleGranter struct {
	GrantFunc func(ctx context.Context, discordUserID string) error
	Granted   []string
}

func (f *FakeRoleGranter) GrantCompletionRole(ctx context.Context, discordUserID string) error {
	f.Granted = append(f.Granted, discordUserID)
	if f.GrantFunc != nil {
		return f.GrantFunc(ctx, discordUserID)
	}
	return nil
}

func newTestHandlers(service *FakeService, notifier *FakeNotifier, granter *FakeRoleGranter) *LeaderboardHandlers {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	tracer := noop.NewTracerProvider().Tracer("test")
	return &LeaderboardHandlers{
		leaderboardService: service,
		notifier:           notifier,
		roleGranter:        granter,
		logger:             logger,
		metrics:            metrics,
		tracer:             tracer,
	}
}
