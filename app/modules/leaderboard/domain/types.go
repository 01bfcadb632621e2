package leaderboarddomain

import "time"

// MemberID is the Advent of Code account identifier, unique within a leaderboard.
type MemberID string

// Part identifies one half of a puzzle day.
type Part int

const (
	PartOne Part = 1
	PartTwo Part = 2
)

// DayProgress holds the two completion slots for a single puzzle day.
// A nil timestamp means the slot is unset.
type DayProgress struct {
	PartOne *time.Time `json:"part_one,omitempty"`
	PartTwo *time.Time `json:"part_two,omitempty"`
}

// Completed reports whether the given part's slot is set.
func (p DayProgress) Completed(part Part) bool {
	switch part {
	case PartOne:
		return p.PartOne != nil
	case PartTwo:
		return p.PartTwo != nil
	}
	return false
}

// Stars returns the number of set slots for the day (0, 1 or 2).
func (p DayProgress) Stars() int {
	n := 0
	if p.PartOne != nil {
		n++
	}
	if p.PartTwo != nil {
		n++
	}
	return n
}

// MemberState is the per-member progress for one tracking period.
type MemberState struct {
	Name string              `json:"name"`
	Days map[int]DayProgress `json:"days"`
}

// Stars returns the member's total star count across all days.
func (m MemberState) Stars() int {
	total := 0
	for _, day := range m.Days {
		total += day.Stars()
	}
	return total
}

func (m MemberState) clone() MemberState {
	out := MemberState{Name: m.Name}
	if m.Days != nil {
		out.Days = make(map[int]DayProgress, len(m.Days))
		for day, progress := range m.Days {
			out.Days[day] = progress
		}
	}
	return out
}

// Snapshot is the full persisted state of a leaderboard at a point in time.
// It is the sole source of truth for which slots have already been announced:
// a slot present here is a slot that was notified (or predates tracking).
type Snapshot struct {
	LeaderboardID string    `json:"leaderboard_id"`
	Period        string    `json:"period"`
	FetchedAt     time.Time `json:"fetched_at"`

	Members map[MemberID]MemberState `json:"members"`

	// CompletionNotified records members whose completion announcement has
	// already fired this period, keyed by member with the firing time.
	CompletionNotified map[MemberID]time.Time `json:"completion_notified,omitempty"`
}

// NewSnapshot returns an empty snapshot for the given leaderboard and period.
func NewSnapshot(leaderboardID, period string) Snapshot {
	return Snapshot{
		LeaderboardID:      leaderboardID,
		Period:             period,
		Members:            make(map[MemberID]MemberState),
		CompletionNotified: make(map[MemberID]time.Time),
	}
}

// Clone returns a deep copy. Diff and completion evaluation never mutate
// their input snapshot; they build a new value from a clone.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		LeaderboardID: s.LeaderboardID,
		Period:        s.Period,
		FetchedAt:     s.FetchedAt,
		Members:       make(map[MemberID]MemberState, len(s.Members)),
	}
	for id, member := range s.Members {
		out.Members[id] = member.clone()
	}
	if s.CompletionNotified != nil {
		out.CompletionNotified = make(map[MemberID]time.Time, len(s.CompletionNotified))
		for id, at := range s.CompletionNotified {
			out.CompletionNotified[id] = at
		}
	}
	return out
}

// MemberName returns the display name recorded for a member, or a stable
// placeholder when the account is anonymous.
func (s Snapshot) MemberName(id MemberID) string {
	if member, ok := s.Members[id]; ok && member.Name != "" {
		return member.Name
	}
	return AnonymousName(id)
}

// AnonymousName is the placeholder shown for accounts with no display name.
func AnonymousName(id MemberID) string {
	return "(anonymous user #" + string(id) + ")"
}

// AchievementEvent records an unset->completed transition for a single slot.
// When DayComplete is set the event carries day-level granularity (both parts
// of the day are done and at least one of them is new) and Part is zero.
type AchievementEvent struct {
	MemberID    MemberID  `json:"member_id"`
	MemberName  string    `json:"member_name"`
	Day         int       `json:"day"`
	Part        Part      `json:"part,omitempty"`
	DayComplete bool      `json:"day_complete,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// CompletionEvent fires once per member per tracking period, when every
// required slot is completed.
type CompletionEvent struct {
	MemberID   MemberID  `json:"member_id"`
	MemberName string    `json:"member_name"`
	Timestamp  time.Time `json:"timestamp"`
}
