package leaderboardintegration

import (
	"context"
	"database/sql"
	"testing"
	"time"

	leaderboarddb "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/infrastructure/repositories"
	leaderboardmigrations "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/advent-bot/integration_tests/containers"
	"github.com/Black-And-White-Club/advent-bot/integration_tests/testutils"
	"github.com/google/go-cmp/cmp"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func setupStore(t *testing.T) *leaderboarddb.PGSnapshotStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		t.Fatalf("failed to start postgres: %v", err)
	}
	t.Cleanup(func() {
		_ = pgContainer.Terminate(context.Background())
	})

	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(pgdb, pgdialect.New())
	t.Cleanup(func() { _ = db.Close() })

	migrator := migrate.NewMigrator(db, leaderboardmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("failed to init migrations: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return leaderboarddb.NewPGSnapshotStore(db)
}

func TestPGSnapshotStoreRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	gen := testutils.NewTestDataGenerator(42)

	snapshot := gen.GenerateSnapshot("99", "2023", 10, 25)
	snapshot.FetchedAt = time.Date(2023, time.December, 5, 12, 0, 0, 0, time.UTC)

	if err := store.Save(ctx, snapshot); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := store.Load(ctx, "99", "2023")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if diff := cmp.Diff(snapshot, loaded); diff != "" {
		t.Errorf("snapshot mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestPGSnapshotStoreMissingIsEmpty(t *testing.T) {
	store := setupStore(t)

	snapshot, err := store.Load(context.Background(), "99", "2015")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(snapshot.Members) != 0 {
		t.Fatalf("expected empty snapshot, got %d members", len(snapshot.Members))
	}
	if snapshot.LeaderboardID != "99" || snapshot.Period != "2015" {
		t.Fatalf("empty snapshot not keyed correctly: %+v", snapshot)
	}
}

func TestPGSnapshotStoreUpsert(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	gen := testutils.NewTestDataGenerator(7)

	first := gen.GenerateSnapshot("99", "2023", 3, 5)
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("first save failed: %v", err)
	}

	second := gen.GenerateSnapshot("99", "2023", 6, 5)
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	loaded, err := store.Load(ctx, "99", "2023")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if diff := cmp.Diff(second, loaded); diff != "" {
		t.Errorf("upsert did not replace snapshot (-saved +loaded):\n%s", diff)
	}
}
