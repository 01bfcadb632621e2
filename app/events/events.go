// Package events holds the bus topics and payloads shared across modules.
package events

import "time"

const (
	// UserLinked is published after an identity link is stored, so the
	// leaderboard module can re-check completion for the newly linked member.
	UserLinked = "user.linked"

	// UserUnlinked is published after a link is removed.
	UserUnlinked = "user.unlinked"

	// RoleGrantRequested asks the Discord adapter to assign the completion
	// role. Grants ride the bus because they are a side effect that must not
	// gate snapshot persistence.
	RoleGrantRequested = "discord.role_grant.requested"

	// CycleCompleted summarizes a finished poll cycle for observers.
	CycleCompleted = "leaderboard.cycle.completed"
)

type UserLinkedPayload struct {
	AoCID     string    `json:"aoc_id"`
	DiscordID string    `json:"discord_id"`
	LinkedAt  time.Time `json:"linked_at"`
}

type UserUnlinkedPayload struct {
	AoCID     string    `json:"aoc_id"`
	DiscordID string    `json:"discord_id"`
}

type RoleGrantRequestedPayload struct {
	AoCID     string `json:"aoc_id"`
	DiscordID string `json:"discord_id"`
	Reason    string `json:"reason"`
}

type CycleCompletedPayload struct {
	CycleID          string    `json:"cycle_id"`
	LeaderboardID    string    `json:"leaderboard_id"`
	Period           string    `json:"period"`
	Achievements     int       `json:"achievements"`
	Completions      int       `json:"completions"`
	DeliveryFailures int       `json:"delivery_failures"`
	SkippedRecords   int       `json:"skipped_records"`
	FetchedAt        time.Time `json:"fetched_at"`
}
