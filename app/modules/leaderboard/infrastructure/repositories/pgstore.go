package leaderboarddb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/domain"
	"github.com/uptrace/bun"
)

// PGSnapshotStore stores snapshots in Postgres via bun. The snapshot value
// lives in a jsonb column; the store only needs point lookups by
// (leaderboard_id, period), so no further normalization is warranted.
type PGSnapshotStore struct {
	DB *bun.DB
}

func NewPGSnapshotStore(db *bun.DB) *PGSnapshotStore {
	return &PGSnapshotStore{DB: db}
}

func (s *PGSnapshotStore) Load(ctx context.Context, leaderboardID, period string) (leaderboarddomain.Snapshot, error) {
	record := new(SnapshotRecord)

	err := s.DB.NewSelect().
		Model(record).
		Where("leaderboard_id = ?", leaderboardID).
		Where("period = ?", period).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return leaderboarddomain.NewSnapshot(leaderboardID, period), nil
	}
	if err != nil {
		return leaderboarddomain.Snapshot{}, &leaderboarddomain.StorageError{Op: "load", Err: err}
	}

	snapshot := record.Snapshot
	if snapshot.Members == nil {
		snapshot.Members = make(map[leaderboarddomain.MemberID]leaderboarddomain.MemberState)
	}
	return snapshot, nil
}

func (s *PGSnapshotStore) Save(ctx context.Context, snapshot leaderboarddomain.Snapshot) error {
	record := &SnapshotRecord{
		LeaderboardID: snapshot.LeaderboardID,
		Period:        snapshot.Period,
		FetchedAt:     snapshot.FetchedAt,
		Snapshot:      snapshot,
		UpdatedAt:     time.Now().UTC(),
	}

	_, err := s.DB.NewInsert().
		Model(record).
		On("CONFLICT (leaderboard_id, period) DO UPDATE").
		Set("snapshot = EXCLUDED.snapshot").
		Set("fetched_at = EXCLUDED.fetched_at").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return &leaderboarddomain.StorageError{Op: "save", Err: err}
	}
	return nil
}
