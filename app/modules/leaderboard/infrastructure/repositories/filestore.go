package leaderboarddb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	leaderboarddomain "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/domain"
)

// FileSnapshotStore keeps one pretty-printed JSON file per leaderboard and
// tracking period under a base directory. Saves go through a temp file and
// rename so a crash never leaves a truncated snapshot behind. Files for past
// periods are left in place, which doubles as the year-rollover backup.
type FileSnapshotStore struct {
	dir string
}

func NewFileSnapshotStore(dir string) *FileSnapshotStore {
	return &FileSnapshotStore{dir: dir}
}

func (s *FileSnapshotStore) path(leaderboardID, period string) string {
	return filepath.Join(s.dir, fmt.Sprintf("leaderboard-%s-%s.json", leaderboardID, period))
}

func (s *FileSnapshotStore) Load(ctx context.Context, leaderboardID, period string) (leaderboarddomain.Snapshot, error) {
	data, err := os.ReadFile(s.path(leaderboardID, period))
	if errors.Is(err, fs.ErrNotExist) {
		return leaderboarddomain.NewSnapshot(leaderboardID, period), nil
	}
	if err != nil {
		return leaderboarddomain.Snapshot{}, &leaderboarddomain.StorageError{Op: "load", Err: err}
	}

	var snapshot leaderboarddomain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return leaderboarddomain.Snapshot{}, &leaderboarddomain.StorageError{
			Op:  "load",
			Err: fmt.Errorf("snapshot file is corrupt: %w", err),
		}
	}
	if snapshot.Members == nil {
		snapshot.Members = make(map[leaderboarddomain.MemberID]leaderboarddomain.MemberState)
	}
	return snapshot, nil
}

func (s *FileSnapshotStore) Save(ctx context.Context, snapshot leaderboarddomain.Snapshot) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return &leaderboarddomain.StorageError{Op: "save", Err: err}
	}

	// Pretty-printed for easy debugging, same as the mapping file.
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return &leaderboarddomain.StorageError{Op: "save", Err: err}
	}

	target := s.path(snapshot.LeaderboardID, snapshot.Period)
	tmp, err := os.CreateTemp(s.dir, filepath.Base(target)+".tmp-*")
	if err != nil {
		return &leaderboarddomain.StorageError{Op: "save", Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &leaderboarddomain.StorageError{Op: "save", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &leaderboarddomain.StorageError{Op: "save", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &leaderboarddomain.StorageError{Op: "save", Err: err}
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return &leaderboarddomain.StorageError{Op: "save", Err: err}
	}
	return nil
}
