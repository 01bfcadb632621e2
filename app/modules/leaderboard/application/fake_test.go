package leaderboardservice

import (
	"context"
	"sync"

	leaderboarddomain "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/domain"
	leaderboardnotifier "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/infrastructure/notifier"
	"github.com/ThreeDotsLabs/watermill/message"
)

// ------------------------
// Fake Fetcher
// ------------------------

type FakeFetcher struct {
	FetchFunc func(ctx context.Context, leaderboardID string, year int) ([]byte, error)
	Calls     int
}

func (f *FakeFetcher) Fetch(ctx context.Context, leaderboardID string, year int) ([]byte, error) {
	f.Calls++
	return f.FetchFunc(ctx, leaderboardID, year)
}

// ------------------------
// Fake SnapshotStore
// ------------------------

// FakeSnapshotStore keeps snapshots in memory unless the Func overrides hook
// a call. Saved is the sequence of snapshots handed to Save.
type FakeSnapshotStore struct {
	LoadFunc func(ctx context.Context, leaderboardID, period string) (leaderboarddomain.Snapshot, error)
	SaveFunc func(ctx context.Context, snapshot leaderboarddomain.Snapshot) error

	stored map[string]leaderboarddomain.Snapshot
	Saved  []leaderboarddomain.Snapshot
}

func NewFakeSnapshotStore() *FakeSnapshotStore {
	return &FakeSnapshotStore{stored: make(map[string]leaderboarddomain.Snapshot)}
}

func (f *FakeSnapshotStore) Load(ctx context.Context, leaderboardID, period string) (leaderboarddomain.Snapshot, error) {
	if f.LoadFunc != nil {
		return f.LoadFunc(ctx, leaderboardID, period)
	}
	if snapshot, ok := f.stored[leaderboardID+"/"+period]; ok {
		return snapshot, nil
	}
	return leaderboarddomain.NewSnapshot(leaderboardID, period), nil
}

func (f *FakeSnapshotStore) Save(ctx context.Context, snapshot leaderboarddomain.Snapshot) error {
	if f.SaveFunc != nil {
		return f.SaveFunc(ctx, snapshot)
	}
	f.stored[snapshot.LeaderboardID+"/"+snapshot.Period] = snapshot
	f.Saved = append(f.Saved, snapshot)
	return nil
}

// ------------------------
// Fake Notifier
// ------------------------

// FakeNotifier reports success for every event unless a Func override is set.
type FakeNotifier struct {
	AnnounceAchievementsFunc func(ctx context.Context, events []leaderboarddomain.AchievementEvent) []leaderboardnotifier.DeliveryResult
	AnnounceCompletionsFunc  func(ctx context.Context, events []leaderboarddomain.CompletionEvent) []leaderboardnotifier.DeliveryResult

	Achievements [][]leaderboarddomain.AchievementEvent
	Completions  [][]leaderboarddomain.CompletionEvent
}

func (f *FakeNotifier) AnnounceAchievements(ctx context.Context, events []leaderboarddomain.AchievementEvent) []leaderboardnotifier.DeliveryResult {
	f.Achievements = append(f.Achievements, events)
	if f.AnnounceAchievementsFunc != nil {
		return f.AnnounceAchievementsFunc(ctx, events)
	}
	results := make([]leaderboardnotifier.DeliveryResult, len(events))
	for i := range events {
		results[i] = leaderboardnotifier.DeliveryResult{Description: "ok"}
	}
	return results
}

func (f *FakeNotifier) AnnounceCompletions(ctx context.Context, events []leaderboarddomain.CompletionEvent) []leaderboardnotifier.DeliveryResult {
	f.Completions = append(f.Completions, events)
	if f.AnnounceCompletionsFunc != nil {
		return f.AnnounceCompletionsFunc(ctx, events)
	}
	results := make([]leaderboardnotifier.DeliveryResult, len(events))
	for i := range events {
		results[i] = leaderboardnotifier.DeliveryResult{Description: "ok"}
	}
	return results
}

// ------------------------
// Fake Resolver
// ------------------------

type FakeResolver struct {
	Links map[leaderboarddomain.MemberID]string
}

func (f *FakeResolver) Resolve(ctx context.Context, memberID leaderboarddomain.MemberID) (string, bool, error) {
	discordID, ok := f.Links[memberID]
	return discordID, ok, nil
}

// ------------------------
// Capturing publisher
// ------------------------

type publishedMessage struct {
	Topic   string
	Payload []byte
}

type CapturingPublisher struct {
	mu       sync.Mutex
	Messages []publishedMessage
}

func (p *CapturingPublisher) Publish(topic string, messages ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, msg := range messages {
		p.Messages = append(p.Messages, publishedMessage{Topic: topic, Payload: msg.Payload})
	}
	return nil
}

func (p *CapturingPublisher) Close() error { return nil }

func (p *CapturingPublisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	topics := make([]string, 0, len(p.Messages))
	for _, msg := range p.Messages {
		topics = append(topics, msg.Topic)
	}
	return topics
}
