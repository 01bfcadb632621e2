package leaderboarddomain

import (
	"testing"
	"time"
)

func fullDays(totalDays int) map[int]DayProgress {
	days := make(map[int]DayProgress, totalDays)
	for day := 1; day <= totalDays; day++ {
		days[day] = DayProgress{PartOne: ts(day, 6), PartTwo: ts(day, 7)}
	}
	return days
}

func TestEvaluateCompletionsFiresOnce(t *testing.T) {
	now := time.Date(2023, time.December, 25, 12, 0, 0, 0, time.UTC)

	snapshot := NewSnapshot("12345", "2023")
	snapshot.Members["alice"] = memberState("alice", fullDays(3))

	events, updated := EvaluateCompletions(snapshot, 3, true, now)
	if len(events) != 1 {
		t.Fatalf("expected one completion event, got %d", len(events))
	}
	if events[0].MemberID != "alice" {
		t.Errorf("unexpected member: %s", events[0].MemberID)
	}

	// Unchanged state, evaluated again: must not re-fire.
	events, _ = EvaluateCompletions(updated, 3, true, now.Add(time.Hour))
	if len(events) != 0 {
		t.Fatalf("completion fired twice, got %d events", len(events))
	}
}

func TestEvaluateCompletionsPartTwoRequiredOnlyWhenConfigured(t *testing.T) {
	now := time.Date(2023, time.December, 25, 12, 0, 0, 0, time.UTC)

	snapshot := NewSnapshot("12345", "2023")
	days := map[int]DayProgress{
		1: {PartOne: ts(1, 6)},
		2: {PartOne: ts(2, 6)},
	}
	snapshot.Members["bob"] = memberState("bob", days)

	events, _ := EvaluateCompletions(snapshot, 2, true, now)
	if len(events) != 0 {
		t.Fatalf("part-one-only progress must not complete when both parts required")
	}

	events, _ = EvaluateCompletions(snapshot, 2, false, now)
	if len(events) != 1 {
		t.Fatalf("expected completion with part one only, got %d events", len(events))
	}
}

func TestEvaluateCompletionsOrdering(t *testing.T) {
	now := time.Date(2023, time.December, 25, 12, 0, 0, 0, time.UTC)

	snapshot := NewSnapshot("12345", "2023")
	snapshot.Members["30"] = memberState("zed", fullDays(1))
	snapshot.Members["11"] = memberState("amy", fullDays(1))
	snapshot.Members["25"] = memberState("bob", fullDays(1))

	events, _ := EvaluateCompletions(snapshot, 1, true, now)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i-1].MemberID >= events[i].MemberID {
			t.Fatalf("events not ordered by member id: %s before %s",
				events[i-1].MemberID, events[i].MemberID)
		}
	}
}

func TestEvaluateCompletionsDoesNotMutateInput(t *testing.T) {
	now := time.Date(2023, time.December, 25, 12, 0, 0, 0, time.UTC)

	snapshot := NewSnapshot("12345", "2023")
	snapshot.Members["alice"] = memberState("alice", fullDays(1))

	_, _ = EvaluateCompletions(snapshot, 1, true, now)

	if len(snapshot.CompletionNotified) != 0 {
		t.Fatal("input snapshot's CompletionNotified was mutated")
	}
}

func TestMemberCompletedEdgeCases(t *testing.T) {
	if MemberCompleted(memberState("x", fullDays(3)), 0, true) {
		t.Error("zero totalDays must never complete")
	}
	missing := fullDays(3)
	delete(missing, 2)
	if MemberCompleted(memberState("x", missing), 3, false) {
		t.Error("a missing day must not complete")
	}
}
