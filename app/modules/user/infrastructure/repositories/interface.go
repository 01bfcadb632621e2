package userdb

import (
	"context"

	userdomain "github.com/Black-And-White-Club/advent-bot/app/modules/user/domain"
)

// LinkStore persists the AoC-to-Discord identity mapping.
type LinkStore interface {
	// Put stores a link, replacing any existing link for either identifier.
	Put(ctx context.Context, link userdomain.Link) error

	// DeleteByDiscordID removes the link owned by a Discord user and returns
	// it; userdomain.ErrNotLinked when none exists.
	DeleteByDiscordID(ctx context.Context, discordID string) (userdomain.Link, error)

	// GetByAoCID returns the link for an AoC account; the second return is
	// false when the account is unlinked.
	GetByAoCID(ctx context.Context, aocID string) (userdomain.Link, bool, error)

	// List returns all links, for admin inspection.
	List(ctx context.Context) ([]userdomain.Link, error)
}
