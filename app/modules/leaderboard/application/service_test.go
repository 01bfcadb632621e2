package leaderboardservice

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Black-And-White-Club/advent-bot/app/events"
	leaderboarddomain "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/domain"
	leaderboardnotifier "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/infrastructure/notifier"
	"github.com/Black-And-White-Club/advent-bot/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace/noop"
)

const testPayload = `{
	"event": "2023",
	"owner_id": 99,
	"members": {
		"11111": {
			"id": 11111,
			"name": "alice",
			"stars": 2,
			"completion_day_level": {
				"1": {
					"1": {"get_star_ts": 1701406800},
					"2": {"get_star_ts": 1701410400}
				}
			}
		},
		"22222": {
			"id": 22222,
			"name": "bob",
			"stars": 0,
			"completion_day_level": {}
		}
	}
}`

func newTestService(t *testing.T, cfg Config, fetcher *FakeFetcher, store *FakeSnapshotStore, notifier *FakeNotifier, resolver *FakeResolver, publisher *CapturingPublisher) *LeaderboardService {
	t.Helper()
	if cfg.LeaderboardID == "" {
		cfg.LeaderboardID = "99"
	}
	if cfg.YearOverride == 0 {
		cfg.YearOverride = 2023
	}
	if cfg.TotalDays == 0 {
		cfg.TotalDays = 25
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	tracer := noop.NewTracerProvider().Tracer("test")

	var res leaderboardnotifier.Resolver
	if resolver != nil {
		res = resolver
	}
	var pub *CapturingPublisher
	if publisher != nil {
		pub = publisher
	}

	svc := NewLeaderboardService(cfg, fetcher, store, notifier, res, nil, logger, metrics, tracer)
	if pub != nil {
		svc.publisher = pub
	}
	svc.now = func() time.Time { return time.Date(2023, time.December, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestRunCycleAnnouncesAndPersists(t *testing.T) {
	fetcher := &FakeFetcher{FetchFunc: func(ctx context.Context, id string, year int) ([]byte, error) {
		return []byte(testPayload), nil
	}}
	store := NewFakeSnapshotStore()
	notifier := &FakeNotifier{}

	svc := newTestService(t, Config{}, fetcher, store, notifier, nil, nil)

	result, err := svc.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle returned error: %v", err)
	}
	if len(result.Achievements) != 2 {
		t.Fatalf("expected 2 achievement events, got %d", len(result.Achievements))
	}
	if len(notifier.Achievements) != 1 {
		t.Fatalf("expected 1 announce call, got %d", len(notifier.Achievements))
	}
	if len(store.Saved) != 1 {
		t.Fatalf("expected 1 save, got %d", len(store.Saved))
	}

	saved := store.Saved[0]
	alice, ok := saved.Members["11111"]
	if !ok {
		t.Fatal("saved snapshot missing alice")
	}
	if alice.Days[1].Stars() != 2 {
		t.Fatalf("expected alice to have 2 stars on day 1, got %d", alice.Days[1].Stars())
	}
	if saved.FetchedAt.IsZero() {
		t.Fatal("saved snapshot has zero FetchedAt")
	}
}

func TestRunCycleIsIdempotent(t *testing.T) {
	fetcher := &FakeFetcher{FetchFunc: func(ctx context.Context, id string, year int) ([]byte, error) {
		return []byte(testPayload), nil
	}}
	store := NewFakeSnapshotStore()
	notifier := &FakeNotifier{}

	svc := newTestService(t, Config{}, fetcher, store, notifier, nil, nil)

	if _, err := svc.RunCycle(context.Background()); err != nil {
		t.Fatalf("first cycle failed: %v", err)
	}
	second, err := svc.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("second cycle failed: %v", err)
	}
	if len(second.Achievements) != 0 {
		t.Fatalf("second identical cycle produced %d events, want 0", len(second.Achievements))
	}
}

func TestRunCycleFetchFailureSkipsCycle(t *testing.T) {
	fetchErr := &leaderboarddomain.FetchError{URL: "https://example.test", StatusCode: 500}
	fetcher := &FakeFetcher{FetchFunc: func(ctx context.Context, id string, year int) ([]byte, error) {
		return nil, fetchErr
	}}
	store := NewFakeSnapshotStore()
	notifier := &FakeNotifier{}

	svc := newTestService(t, Config{}, fetcher, store, notifier, nil, nil)

	_, err := svc.RunCycle(context.Background())
	var fe *leaderboarddomain.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if len(store.Saved) != 0 {
		t.Fatal("fetch failure must not persist a snapshot")
	}
	if len(notifier.Achievements) != 0 {
		t.Fatal("fetch failure must not announce anything")
	}
}

func TestRunCycleUnparseableDocumentSkipsCycle(t *testing.T) {
	fetcher := &FakeFetcher{FetchFunc: func(ctx context.Context, id string, year int) ([]byte, error) {
		return []byte("<html>login required</html>"), nil
	}}
	store := NewFakeSnapshotStore()
	notifier := &FakeNotifier{}

	svc := newTestService(t, Config{}, fetcher, store, notifier, nil, nil)

	_, err := svc.RunCycle(context.Background())
	var fe *leaderboarddomain.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError for unparseable document, got %v", err)
	}
	if len(store.Saved) != 0 {
		t.Fatal("unparseable document must not persist a snapshot")
	}
}

func TestRunCycleSkipsMalformedRecords(t *testing.T) {
	payload := `{
		"members": {
			"11111": {
				"id": 11111,
				"name": "alice",
				"completion_day_level": {
					"1": {"1": {"get_star_ts": 1701406800}}
				}
			},
			"22222": {
				"id": 22222,
				"name": "bob",
				"completion_day_level": {
					"nope": {"1": {"get_star_ts": 1701406800}}
				}
			}
		}
	}`
	fetcher := &FakeFetcher{FetchFunc: func(ctx context.Context, id string, year int) ([]byte, error) {
		return []byte(payload), nil
	}}
	store := NewFakeSnapshotStore()
	notifier := &FakeNotifier{}

	svc := newTestService(t, Config{}, fetcher, store, notifier, nil, nil)

	result, err := svc.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle returned error: %v", err)
	}
	if result.SkippedRecords != 1 {
		t.Fatalf("expected 1 skipped record, got %d", result.SkippedRecords)
	}
	if len(result.Achievements) != 1 {
		t.Fatalf("expected alice's event despite bob's bad record, got %d events", len(result.Achievements))
	}
	if _, ok := store.Saved[0].Members["22222"]; ok {
		t.Fatal("malformed record must not enter the snapshot")
	}
}

func TestRunCycleSaveFailureIsStorageError(t *testing.T) {
	fetcher := &FakeFetcher{FetchFunc: func(ctx context.Context, id string, year int) ([]byte, error) {
		return []byte(testPayload), nil
	}}
	store := NewFakeSnapshotStore()
	store.SaveFunc = func(ctx context.Context, snapshot leaderboarddomain.Snapshot) error {
		return &leaderboarddomain.StorageError{Op: "save", Err: errors.New("disk full")}
	}
	notifier := &FakeNotifier{}

	svc := newTestService(t, Config{}, fetcher, store, notifier, nil, nil)

	_, err := svc.RunCycle(context.Background())
	var se *leaderboarddomain.StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if len(notifier.Achievements) != 1 {
		t.Fatal("dispatch happens before persistence, announce should have run")
	}
}

func TestRunCycleDeliveryFailureStillPersists(t *testing.T) {
	fetcher := &FakeFetcher{FetchFunc: func(ctx context.Context, id string, year int) ([]byte, error) {
		return []byte(testPayload), nil
	}}
	store := NewFakeSnapshotStore()
	notifier := &FakeNotifier{
		AnnounceAchievementsFunc: func(ctx context.Context, evts []leaderboarddomain.AchievementEvent) []leaderboardnotifier.DeliveryResult {
			results := make([]leaderboardnotifier.DeliveryResult, len(evts))
			for i := range evts {
				results[i] = leaderboardnotifier.DeliveryResult{
					Description: "webhook down",
					Err:         &leaderboarddomain.DeliveryError{Description: "webhook down", Err: errors.New("503")},
				}
			}
			return results
		},
	}

	svc := newTestService(t, Config{}, fetcher, store, notifier, nil, nil)

	result, err := svc.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("delivery failures must not fail the cycle: %v", err)
	}
	if result.DeliveryFailures != 2 {
		t.Fatalf("expected 2 delivery failures, got %d", result.DeliveryFailures)
	}
	if len(store.Saved) != 1 {
		t.Fatal("snapshot must persist even when every delivery failed")
	}
}

func TestRunCycleCompletionPublishesRoleGrant(t *testing.T) {
	fetcher := &FakeFetcher{FetchFunc: func(ctx context.Context, id string, year int) ([]byte, error) {
		return []byte(testPayload), nil
	}}
	store := NewFakeSnapshotStore()
	notifier := &FakeNotifier{}
	resolver := &FakeResolver{Links: map[leaderboarddomain.MemberID]string{"11111": "555666777"}}
	publisher := &CapturingPublisher{}

	// Day 1 fully solved is a completion when the event is one day long.
	svc := newTestService(t, Config{TotalDays: 1, RequireBothStars: true}, fetcher, store, notifier, resolver, publisher)

	result, err := svc.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle returned error: %v", err)
	}
	if len(result.Completions) != 1 {
		t.Fatalf("expected 1 completion, got %d", len(result.Completions))
	}

	var grant *events.RoleGrantRequestedPayload
	sawCycle := false
	for _, msg := range publisher.Messages {
		switch msg.Topic {
		case events.RoleGrantRequested:
			grant = &events.RoleGrantRequestedPayload{}
			if err := json.Unmarshal(msg.Payload, grant); err != nil {
				t.Fatalf("bad role grant payload: %v", err)
			}
		case events.CycleCompleted:
			sawCycle = true
		}
	}
	if grant == nil {
		t.Fatal("expected a role grant request on the bus")
	}
	if grant.DiscordID != "555666777" || grant.AoCID != "11111" {
		t.Fatalf("unexpected grant payload: %+v", grant)
	}
	if !sawCycle {
		t.Fatal("expected a cycle completion event on the bus")
	}

	// The completion is recorded, so a second cycle stays quiet.
	second, err := svc.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("second cycle failed: %v", err)
	}
	if len(second.Completions) != 0 {
		t.Fatalf("completion announced twice, second run had %d", len(second.Completions))
	}
}

func TestRunCycleUnlinkedCompletionSkipsGrant(t *testing.T) {
	fetcher := &FakeFetcher{FetchFunc: func(ctx context.Context, id string, year int) ([]byte, error) {
		return []byte(testPayload), nil
	}}
	store := NewFakeSnapshotStore()
	notifier := &FakeNotifier{}
	resolver := &FakeResolver{Links: map[leaderboarddomain.MemberID]string{}}
	publisher := &CapturingPublisher{}

	svc := newTestService(t, Config{TotalDays: 1, RequireBothStars: true}, fetcher, store, notifier, resolver, publisher)

	result, err := svc.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle returned error: %v", err)
	}
	if len(result.Completions) != 1 {
		t.Fatalf("expected the completion announcement regardless of linking, got %d", len(result.Completions))
	}
	for _, topic := range publisher.Topics() {
		if topic == events.RoleGrantRequested {
			t.Fatal("unlinked member must not trigger a role grant")
		}
	}
}

func TestMemberCompleted(t *testing.T) {
	store := NewFakeSnapshotStore()
	ts := time.Date(2023, time.December, 1, 5, 0, 0, 0, time.UTC)
	snapshot := leaderboarddomain.NewSnapshot("99", "2023")
	snapshot.Members["11111"] = leaderboarddomain.MemberState{
		Name: "alice",
		Days: map[int]leaderboarddomain.DayProgress{1: {PartOne: &ts, PartTwo: &ts}},
	}
	if err := store.Save(context.Background(), snapshot); err != nil {
		t.Fatalf("seed save failed: %v", err)
	}

	svc := newTestService(t, Config{TotalDays: 1, RequireBothStars: true}, &FakeFetcher{}, store, &FakeNotifier{}, nil, nil)

	done, err := svc.MemberCompleted(context.Background(), "11111")
	if err != nil {
		t.Fatalf("MemberCompleted returned error: %v", err)
	}
	if !done {
		t.Fatal("expected alice to be complete")
	}

	done, err = svc.MemberCompleted(context.Background(), "404")
	if err != nil {
		t.Fatalf("MemberCompleted returned error: %v", err)
	}
	if done {
		t.Fatal("unknown member cannot be complete")
	}
}
