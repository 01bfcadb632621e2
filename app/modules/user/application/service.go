package userservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/advent-bot/app/events"
	leaderboarddomain "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/domain"
	userdomain "github.com/Black-And-White-Club/advent-bot/app/modules/user/domain"
	userdb "github.com/Black-And-White-Club/advent-bot/app/modules/user/infrastructure/repositories"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// Service is the identity-mapping surface used by the HTTP API and the
// leaderboard notifier.
type Service interface {
	Link(ctx context.Context, aocID, discordID string) (userdomain.Link, error)
	Unlink(ctx context.Context, discordID string) (userdomain.Link, error)
	Resolve(ctx context.Context, memberID leaderboarddomain.MemberID) (string, bool, error)
	List(ctx context.Context) ([]userdomain.Link, error)
}

type UserService struct {
	store     userdb.LinkStore
	publisher message.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewUserService(store userdb.LinkStore, publisher message.Publisher, logger *slog.Logger) *UserService {
	return &UserService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Link stores the mapping and announces it on the bus. The leaderboard module
// listens so a member who links after finishing still gets their role.
func (s *UserService) Link(ctx context.Context, aocID, discordID string) (userdomain.Link, error) {
	link, err := userdomain.NewLink(aocID, discordID, s.now().UTC())
	if err != nil {
		return userdomain.Link{}, err
	}

	if err := s.store.Put(ctx, link); err != nil {
		return userdomain.Link{}, fmt.Errorf("store link: %w", err)
	}

	s.logger.InfoContext(ctx, "Account linked",
		slog.String("aoc_id", link.AoCID),
		slog.String("discord_id", link.DiscordID),
	)

	s.publish(ctx, events.UserLinked, events.UserLinkedPayload{
		AoCID:     link.AoCID,
		DiscordID: link.DiscordID,
		LinkedAt:  link.LinkedAt,
	})
	return link, nil
}

func (s *UserService) Unlink(ctx context.Context, discordID string) (userdomain.Link, error) {
	link, err := s.store.DeleteByDiscordID(ctx, discordID)
	if err != nil {
		return userdomain.Link{}, err
	}

	s.logger.InfoContext(ctx, "Account unlinked",
		slog.String("aoc_id", link.AoCID),
		slog.String("discord_id", link.DiscordID),
	)

	s.publish(ctx, events.UserUnlinked, events.UserUnlinkedPayload{
		AoCID:     link.AoCID,
		DiscordID: link.DiscordID,
	})
	return link, nil
}

// Resolve implements the notifier's Resolver: AoC member id to Discord id.
func (s *UserService) Resolve(ctx context.Context, memberID leaderboarddomain.MemberID) (string, bool, error) {
	link, ok, err := s.store.GetByAoCID(ctx, string(memberID))
	if err != nil || !ok {
		return "", false, err
	}
	return link.DiscordID, true, nil
}

func (s *UserService) List(ctx context.Context) ([]userdomain.Link, error) {
	return s.store.List(ctx)
}

func (s *UserService) publish(ctx context.Context, topic string, payload any) {
	if s.publisher == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to marshal event payload",
			slog.String("topic", topic), slog.Any("error", err))
		return
	}
	if err := s.publisher.Publish(topic, message.NewMessage(uuid.New().String(), data)); err != nil {
		// Bus publication is best-effort; the link itself is already stored.
		s.logger.ErrorContext(ctx, "Failed to publish event",
			slog.String("topic", topic), slog.Any("error", err))
	}
}
