package leaderboardmigrations

import (
	"context"
	"fmt"

	leaderboarddb "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating leaderboard_snapshots table...")

		if _, err := db.NewCreateTable().Model((*leaderboarddb.SnapshotRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		_, err := db.NewRaw("CREATE UNIQUE INDEX IF NOT EXISTS idx_snapshots_leaderboard_period ON leaderboard_snapshots (leaderboard_id, period)").Exec(ctx)
		if err != nil {
			return err
		}

		fmt.Println("leaderboard_snapshots table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping leaderboard_snapshots table...")

		if _, err := db.NewDropTable().Model((*leaderboarddb.SnapshotRecord)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("leaderboard_snapshots table dropped successfully!")
		return nil
	})
}
