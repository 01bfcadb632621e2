package leaderboardhandlers

import "github.com/ThreeDotsLabs/watermill/message"

// Handlers processes the leaderboard module's bus traffic.
type Handlers interface {
	HandleUserLinked(msg *message.Message) ([]*message.Message, error)
	HandleUserUnlinked(msg *message.Message) ([]*message.Message, error)
	HandleRoleGrantRequested(msg *message.Message) ([]*message.Message, error)
}
