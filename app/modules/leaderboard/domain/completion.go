package leaderboarddomain

import (
	"sort"
	"time"
)

// MemberCompleted reports whether the member has every required slot for the
// period: part one of all totalDays days, plus part two when
// requireBothParts is set.
func MemberCompleted(member MemberState, totalDays int, requireBothParts bool) bool {
	if totalDays <= 0 {
		return false
	}
	for day := 1; day <= totalDays; day++ {
		progress, ok := member.Days[day]
		if !ok || progress.PartOne == nil {
			return false
		}
		if requireBothParts && progress.PartTwo == nil {
			return false
		}
	}
	return true
}

// EvaluateCompletions scans the merged snapshot for members who newly reached
// full completion and returns one event per such member, ordered by member id.
// The returned snapshot records them in CompletionNotified so the event fires
// at most once per member per tracking period, across restarts included.
func EvaluateCompletions(merged Snapshot, totalDays int, requireBothParts bool, now time.Time) ([]CompletionEvent, Snapshot) {
	updated := merged.Clone()
	if updated.CompletionNotified == nil {
		updated.CompletionNotified = make(map[MemberID]time.Time)
	}

	var events []CompletionEvent
	for id, member := range merged.Members {
		if _, fired := merged.CompletionNotified[id]; fired {
			continue
		}
		if !MemberCompleted(member, totalDays, requireBothParts) {
			continue
		}
		events = append(events, CompletionEvent{
			MemberID:   id,
			MemberName: merged.MemberName(id),
			Timestamp:  now,
		})
		updated.CompletionNotified[id] = now
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].MemberID < events[j].MemberID
	})
	return events, updated
}
