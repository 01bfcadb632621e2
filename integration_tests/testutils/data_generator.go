package testutils

import (
	"strconv"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/domain"
	"github.com/brianvoe/gofakeit/v7"
)

// TestDataGenerator provides methods to create test data for integration tests.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  uint64
}

// NewTestDataGenerator creates a new test data generator with optional seed.
func NewTestDataGenerator(seed ...uint64) *TestDataGenerator {
	var s uint64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = uint64(time.Now().UnixNano())
	}
	return &TestDataGenerator{faker: gofakeit.New(s), seed: s}
}

// GenerateSnapshot produces a populated snapshot with the given number of
// members, each with random progress over the first totalDays days.
func (g *TestDataGenerator) GenerateSnapshot(leaderboardID, period string, memberCount, totalDays int) leaderboarddomain.Snapshot {
	snapshot := leaderboarddomain.NewSnapshot(leaderboardID, period)

	base := time.Date(2023, time.December, 1, 5, 0, 0, 0, time.UTC)
	for i := 0; i < memberCount; i++ {
		memberID := leaderboarddomain.MemberID(strconv.Itoa(10000 + i))
		state := leaderboarddomain.MemberState{
			Name: g.faker.Username(),
			Days: make(map[int]leaderboarddomain.DayProgress),
		}

		for day := 1; day <= totalDays; day++ {
			if g.faker.Bool() {
				continue
			}
			partOne := base.AddDate(0, 0, day-1).Add(time.Duration(g.faker.IntRange(0, 3600)) * time.Second)
			progress := leaderboarddomain.DayProgress{PartOne: &partOne}
			if g.faker.Bool() {
				partTwo := partOne.Add(time.Duration(g.faker.IntRange(60, 7200)) * time.Second)
				progress.PartTwo = &partTwo
			}
			state.Days[day] = progress
		}
		snapshot.Members[memberID] = state
	}

	return snapshot
}
