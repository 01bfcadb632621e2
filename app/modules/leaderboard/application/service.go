package leaderboardservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/advent-bot/app/events"
	leaderboarddomain "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/domain"
	leaderboardfetcher "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/infrastructure/fetcher"
	leaderboardnotifier "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/infrastructure/notifier"
	leaderboarddb "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/infrastructure/repositories"
	"github.com/Black-And-White-Club/advent-bot/internal/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// Service is the leaderboard module's application surface.
type Service interface {
	// RunCycle executes one fetch -> diff -> notify -> persist cycle.
	RunCycle(ctx context.Context) (CycleResult, error)

	// CurrentSnapshot loads the persisted snapshot for the active period.
	CurrentSnapshot(ctx context.Context) (leaderboarddomain.Snapshot, error)

	// MemberCompleted reports whether a member has every required star in
	// the persisted snapshot.
	MemberCompleted(ctx context.Context, memberID leaderboarddomain.MemberID) (bool, error)
}

// CycleResult summarizes one completed cycle.
type CycleResult struct {
	CycleID          string
	Period           string
	Achievements     []leaderboarddomain.AchievementEvent
	Completions      []leaderboarddomain.CompletionEvent
	DeliveryFailures int
	SkippedRecords   int
}

// LeaderboardService orchestrates the poll cycle. All computation lives in
// the domain package; this layer only sequences I/O around it.
type LeaderboardService struct {
	fetcher   leaderboardfetcher.Fetcher
	store     leaderboarddb.SnapshotStore
	notifier  leaderboardnotifier.Notifier
	resolver  leaderboardnotifier.Resolver
	publisher message.Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	tracer    trace.Tracer

	leaderboardID    string
	yearOverride     int
	totalDays        int
	requireBothStars bool

	now func() time.Time
}

type Config struct {
	LeaderboardID    string
	YearOverride     int
	TotalDays        int
	RequireBothStars bool
}

func NewLeaderboardService(
	cfg Config,
	fetcher leaderboardfetcher.Fetcher,
	store leaderboarddb.SnapshotStore,
	notifier leaderboardnotifier.Notifier,
	resolver leaderboardnotifier.Resolver,
	publisher message.Publisher,
	logger *slog.Logger,
	metrics *observability.Metrics,
	tracer trace.Tracer,
) *LeaderboardService {
	return &LeaderboardService{
		fetcher:          fetcher,
		store:            store,
		notifier:         notifier,
		resolver:         resolver,
		publisher:        publisher,
		logger:           logger,
		metrics:          metrics,
		tracer:           tracer,
		leaderboardID:    cfg.LeaderboardID,
		yearOverride:     cfg.YearOverride,
		totalDays:        cfg.TotalDays,
		requireBothStars: cfg.RequireBothStars,
		now:              time.Now,
	}
}

func (s *LeaderboardService) year(now time.Time) int {
	if s.yearOverride != 0 {
		return s.yearOverride
	}
	return leaderboarddomain.DefaultEventYear(now)
}

// RunCycle runs a single cycle to completion. A FetchError means the cycle
// was skipped before any side effect. A StorageError means notifications went
// out but the merged snapshot could not be persisted; the caller must treat
// that as fatal to automatic cycling.
func (s *LeaderboardService) RunCycle(ctx context.Context) (CycleResult, error) {
	ctx, span := s.tracer.Start(ctx, "leaderboard.RunCycle")
	defer span.End()

	start := s.now().UTC()
	year := s.year(start)
	period := leaderboarddomain.PeriodKey(year)
	result := CycleResult{CycleID: uuid.New().String(), Period: period}

	raw, err := s.fetcher.Fetch(ctx, s.leaderboardID, year)
	if err != nil {
		s.metrics.CyclesTotal.WithLabelValues(observability.CycleResultFetchSkipped).Inc()
		return result, err
	}

	previous, err := s.store.Load(ctx, s.leaderboardID, period)
	if err != nil {
		s.metrics.CyclesTotal.WithLabelValues(observability.CycleResultStorageError).Inc()
		return result, err
	}

	candidate, recordErrs, err := leaderboarddomain.ParseLeaderboard(raw)
	if err != nil {
		// A document we cannot decode at all is handled like a failed
		// fetch: skip the cycle, keep the previous snapshot untouched.
		s.metrics.CyclesTotal.WithLabelValues(observability.CycleResultFetchSkipped).Inc()
		return result, &leaderboarddomain.FetchError{Err: fmt.Errorf("unparseable response: %w", err)}
	}
	for _, recordErr := range recordErrs {
		s.logger.WarnContext(ctx, "Skipping malformed member record",
			slog.String("cycle_id", result.CycleID),
			slog.String("member_id", recordErr.MemberID),
			slog.String("reason", recordErr.Reason),
		)
	}
	result.SkippedRecords = len(recordErrs)
	s.metrics.SkippedRecordsTotal.Add(float64(len(recordErrs)))

	achievements, merged := leaderboarddomain.Diff(previous, candidate, s.requireBothStars)
	merged.FetchedAt = start
	result.Achievements = achievements
	s.metrics.AchievementEventsTotal.Add(float64(len(achievements)))

	result.DeliveryFailures += s.recordDeliveries(ctx, result.CycleID,
		s.notifier.AnnounceAchievements(ctx, achievements))

	completions, merged := leaderboarddomain.EvaluateCompletions(merged, s.totalDays, s.requireBothStars, start)
	result.Completions = completions
	s.metrics.CompletionEventsTotal.Add(float64(len(completions)))

	result.DeliveryFailures += s.recordDeliveries(ctx, result.CycleID,
		s.notifier.AnnounceCompletions(ctx, completions))

	for _, completion := range completions {
		s.requestRoleGrant(ctx, completion.MemberID, "completed all days")
	}

	// Persist only after dispatch: the snapshot is the already-notified
	// record, and a slot recorded here is a slot that will never announce
	// again. Delivery failures above do not block the save; re-announcing
	// on the next cycle would be worse than an under-delivered batch.
	if err := s.store.Save(ctx, merged); err != nil {
		s.metrics.CyclesTotal.WithLabelValues(observability.CycleResultStorageError).Inc()
		return result, err
	}

	s.publishCycleCompleted(ctx, result, start)

	s.metrics.CyclesTotal.WithLabelValues(observability.CycleResultSuccess).Inc()
	s.metrics.CycleDuration.Observe(s.now().UTC().Sub(start).Seconds())

	s.logger.InfoContext(ctx, "Cycle completed",
		slog.String("cycle_id", result.CycleID),
		slog.String("period", period),
		slog.Int("achievements", len(achievements)),
		slog.Int("completions", len(completions)),
		slog.Int("delivery_failures", result.DeliveryFailures),
		slog.Int("skipped_records", result.SkippedRecords),
	)
	return result, nil
}

func (s *LeaderboardService) recordDeliveries(ctx context.Context, cycleID string, results []leaderboardnotifier.DeliveryResult) int {
	failures := 0
	for _, res := range results {
		if res.Err == nil {
			continue
		}
		failures++
		// Logged for manual follow-up; never dropped silently.
		s.logger.ErrorContext(ctx, "Notification delivery failed",
			slog.String("cycle_id", cycleID),
			slog.String("event", res.Description),
			slog.Any("error", res.Err),
		)
	}
	s.metrics.DeliveryFailuresTotal.Add(float64(failures))
	return failures
}

// requestRoleGrant publishes a role-grant command for linked members. Role
// grants ride the bus so their delivery never gates snapshot persistence.
func (s *LeaderboardService) requestRoleGrant(ctx context.Context, memberID leaderboarddomain.MemberID, reason string) {
	if s.resolver == nil || s.publisher == nil {
		return
	}
	discordID, ok, err := s.resolver.Resolve(ctx, memberID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to resolve member for role grant",
			slog.String("member_id", string(memberID)), slog.Any("error", err))
		return
	}
	if !ok {
		// Unmapped members still get announcements; only the grant is off.
		s.logger.InfoContext(ctx, "Member completed but is not linked, skipping role grant",
			slog.String("member_id", string(memberID)))
		return
	}

	payload, err := json.Marshal(events.RoleGrantRequestedPayload{
		AoCID:     string(memberID),
		DiscordID: discordID,
		Reason:    reason,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to marshal role grant payload", slog.Any("error", err))
		return
	}
	if err := s.publisher.Publish(events.RoleGrantRequested, message.NewMessage(uuid.New().String(), payload)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish role grant request",
			slog.String("member_id", string(memberID)), slog.Any("error", err))
	}
}

func (s *LeaderboardService) publishCycleCompleted(ctx context.Context, result CycleResult, fetchedAt time.Time) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(events.CycleCompletedPayload{
		CycleID:          result.CycleID,
		LeaderboardID:    s.leaderboardID,
		Period:           result.Period,
		Achievements:     len(result.Achievements),
		Completions:      len(result.Completions),
		DeliveryFailures: result.DeliveryFailures,
		SkippedRecords:   result.SkippedRecords,
		FetchedAt:        fetchedAt,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to marshal cycle payload", slog.Any("error", err))
		return
	}
	if err := s.publisher.Publish(events.CycleCompleted, message.NewMessage(uuid.New().String(), payload)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish cycle completion", slog.Any("error", err))
	}
}

func (s *LeaderboardService) CurrentSnapshot(ctx context.Context) (leaderboarddomain.Snapshot, error) {
	now := s.now().UTC()
	return s.store.Load(ctx, s.leaderboardID, leaderboarddomain.PeriodKey(s.year(now)))
}

func (s *LeaderboardService) MemberCompleted(ctx context.Context, memberID leaderboarddomain.MemberID) (bool, error) {
	snapshot, err := s.CurrentSnapshot(ctx)
	if err != nil {
		return false, err
	}
	member, ok := snapshot.Members[memberID]
	if !ok {
		return false, nil
	}
	return leaderboarddomain.MemberCompleted(member, s.totalDays, s.requireBothStars), nil
}
