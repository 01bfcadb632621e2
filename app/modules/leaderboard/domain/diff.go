package leaderboarddomain

import "sort"

// Diff compares the previous snapshot against freshly fetched member state and
// returns the achievement events for newly completed slots plus the merged
// snapshot to persist once those events have been dispatched.
//
// The merge is a slot-wise union: a slot set in either input is set in the
// output. Upstream data that is less complete than the previous snapshot (a
// stale or partial response) therefore never regresses the persisted record,
// and never produces a negative event. Members present in previous but absent
// from candidate are carried over unchanged.
//
// With requireBothParts set, part-one-only progress is suppressed and a single
// day-level event is emitted when both parts of a day are complete and at
// least one of them is new.
func Diff(previous Snapshot, candidate map[MemberID]MemberState, requireBothParts bool) ([]AchievementEvent, Snapshot) {
	merged := previous.Clone()
	if merged.Members == nil {
		merged.Members = make(map[MemberID]MemberState, len(candidate))
	}

	var events []AchievementEvent

	for id, cand := range candidate {
		prev := previous.Members[id]
		merged.Members[id] = unionMember(prev, cand)
		name := cand.Name
		if name == "" {
			name = AnonymousName(id)
		}

		for day, progress := range cand.Days {
			prevDay := prev.Days[day]

			newOne := progress.PartOne != nil && prevDay.PartOne == nil
			newTwo := progress.PartTwo != nil && prevDay.PartTwo == nil
			if !newOne && !newTwo {
				continue
			}

			if requireBothParts {
				if progress.PartOne == nil || progress.PartTwo == nil {
					continue
				}
				ts := *progress.PartOne
				if progress.PartTwo.After(ts) {
					ts = *progress.PartTwo
				}
				events = append(events, AchievementEvent{
					MemberID:    id,
					MemberName:  name,
					Day:         day,
					DayComplete: true,
					Timestamp:   ts,
				})
				continue
			}

			if newOne {
				events = append(events, AchievementEvent{
					MemberID:   id,
					MemberName: name,
					Day:        day,
					Part:       PartOne,
					Timestamp:  *progress.PartOne,
				})
			}
			if newTwo {
				events = append(events, AchievementEvent{
					MemberID:   id,
					MemberName: name,
					Day:        day,
					Part:       PartTwo,
					Timestamp:  *progress.PartTwo,
				})
			}
		}
	}

	sortAchievements(events)
	return events, merged
}

// unionMember merges two member states slot-wise, preferring the earliest
// known timestamp when both inputs hold the same slot. The candidate display
// name wins when present; renames upstream should stick.
func unionMember(prev, cand MemberState) MemberState {
	out := MemberState{Name: cand.Name, Days: make(map[int]DayProgress)}
	if out.Name == "" {
		out.Name = prev.Name
	}

	for day, progress := range prev.Days {
		out.Days[day] = progress
	}
	for day, progress := range cand.Days {
		existing := out.Days[day]
		if progress.PartOne != nil && existing.PartOne == nil {
			existing.PartOne = progress.PartOne
		}
		if progress.PartTwo != nil && existing.PartTwo == nil {
			existing.PartTwo = progress.PartTwo
		}
		out.Days[day] = existing
	}
	return out
}

// sortAchievements orders events by (day, part, member id) ascending so a
// cycle's announcements are deterministic regardless of map iteration order.
func sortAchievements(events []AchievementEvent) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].Day != events[j].Day {
			return events[i].Day < events[j].Day
		}
		if events[i].Part != events[j].Part {
			return events[i].Part < events[j].Part
		}
		return events[i].MemberID < events[j].MemberID
	})
}
