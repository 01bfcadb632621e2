package leaderboarddb

import (
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/domain"
	"github.com/uptrace/bun"
)

// SnapshotRecord is the bun model for a persisted leaderboard snapshot.
// One row per (leaderboard_id, period); Save upserts into it.
type SnapshotRecord struct {
	bun.BaseModel `bun:"table:leaderboard_snapshots,alias:ls"`

	ID            int64                        `bun:"id,pk,autoincrement"`
	LeaderboardID string                       `bun:"leaderboard_id,notnull"`
	Period        string                       `bun:"period,notnull"`
	FetchedAt     time.Time                    `bun:"fetched_at,nullzero"`
	Snapshot      leaderboarddomain.Snapshot   `bun:"snapshot,type:jsonb,notnull"`
	UpdatedAt     time.Time                    `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
