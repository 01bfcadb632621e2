package leaderboarddomain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Wire format of https://adventofcode.com/{year}/leaderboard/private/view/{id}.json.
// Day and part keys arrive as strings; star timestamps as unix seconds.
type rawLeaderboard struct {
	Event   string               `json:"event"`
	OwnerID json.Number          `json:"owner_id"`
	Members map[string]rawMember `json:"members"`
}

type rawMember struct {
	ID                 json.Number                     `json:"id"`
	Name               *string                         `json:"name"`
	Stars              int                             `json:"stars"`
	CompletionDayLevel map[string]map[string]*rawStar `json:"completion_day_level"`
}

type rawStar struct {
	GetStarTS int64 `json:"get_star_ts"`
}

// ParseLeaderboard decodes the upstream leaderboard document into per-member
// state. Malformed member records are skipped and reported individually; only
// a document that cannot be decoded at all is a hard error.
func ParseLeaderboard(raw []byte) (map[MemberID]MemberState, []*RecordError, error) {
	var doc rawLeaderboard
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("decode leaderboard document: %w", err)
	}

	members := make(map[MemberID]MemberState, len(doc.Members))
	var recordErrs []*RecordError

	for key, member := range doc.Members {
		id := key
		if member.ID.String() != "" {
			id = member.ID.String()
		}

		state, err := parseMember(member)
		if err != nil {
			recordErrs = append(recordErrs, &RecordError{MemberID: id, Reason: err.Error()})
			continue
		}
		members[MemberID(id)] = state
	}

	return members, recordErrs, nil
}

func parseMember(member rawMember) (MemberState, error) {
	state := MemberState{Days: make(map[int]DayProgress)}
	if member.Name != nil {
		state.Name = *member.Name
	}

	for dayKey, parts := range member.CompletionDayLevel {
		day, err := strconv.Atoi(dayKey)
		if err != nil || day < 1 {
			return MemberState{}, fmt.Errorf("invalid day key %q", dayKey)
		}

		progress := DayProgress{}
		for partKey, star := range parts {
			if star == nil || star.GetStarTS <= 0 {
				return MemberState{}, fmt.Errorf("day %d part %s has no star timestamp", day, partKey)
			}
			ts := time.Unix(star.GetStarTS, 0).UTC()
			switch partKey {
			case "1":
				progress.PartOne = &ts
			case "2":
				progress.PartTwo = &ts
			default:
				return MemberState{}, fmt.Errorf("day %d has invalid part key %q", day, partKey)
			}
		}
		state.Days[day] = progress
	}

	return state, nil
}
