package userdomain

import (
	"errors"
	"strconv"
	"time"
)

var (
	ErrInvalidAoCID     = errors.New("aoc id must be a positive integer")
	ErrInvalidDiscordID = errors.New("discord id must be a numeric snowflake")
	ErrNotLinked        = errors.New("account is not linked")
)

// Link ties an Advent of Code account to a Discord user. One AoC account maps
// to at most one Discord user and vice versa; linking again overwrites.
type Link struct {
	AoCID     string    `json:"aoc_id"`
	DiscordID string    `json:"discord_id"`
	LinkedAt  time.Time `json:"linked_at"`
}

// NewLink validates identifiers and stamps the link time.
func NewLink(aocID, discordID string, now time.Time) (Link, error) {
	if n, err := strconv.ParseInt(aocID, 10, 64); err != nil || n <= 0 {
		return Link{}, ErrInvalidAoCID
	}
	if n, err := strconv.ParseUint(discordID, 10, 64); err != nil || n == 0 {
		return Link{}, ErrInvalidDiscordID
	}
	return Link{AoCID: aocID, DiscordID: discordID, LinkedAt: now}, nil
}
