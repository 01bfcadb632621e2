package leaderboarddb

import (
	"context"

	leaderboarddomain "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/domain"
)

// SnapshotStore persists the last-known leaderboard state between cycles.
//
// Load returns an empty snapshot when no prior state exists for the
// leaderboard/period pair; "not found" is never an error. Any other failure
// (including an unreadable existing record) is a StorageError: proceeding
// with an empty previous snapshot would re-announce every recorded slot.
//
// Save must be atomic. A half-written snapshot on crash corrupts the
// already-notified record.
type SnapshotStore interface {
	Load(ctx context.Context, leaderboardID, period string) (leaderboarddomain.Snapshot, error)
	Save(ctx context.Context, snapshot leaderboarddomain.Snapshot) error
}
