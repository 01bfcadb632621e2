package leaderboardhandlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/advent-bot/app/events"
	leaderboarddomain "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/domain"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// HandleUserLinked re-checks completion for a freshly linked member. Someone
// who finished the event before linking their account would otherwise never
// receive the role, because the completion announcement already fired.
func (h *LeaderboardHandlers) HandleUserLinked(msg *message.Message) ([]*message.Message, error) {
	ctx, span := h.tracer.Start(msg.Context(), "HandleUserLinked")
	defer span.End()

	var payload events.UserLinkedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		h.logger.ErrorContext(ctx, "Failed to decode user linked payload",
			slog.String("message_id", msg.UUID), slog.Any("error", err))
		// Poison message, do not redeliver.
		return nil, nil
	}

	h.logger.InfoContext(ctx, "Received user link",
		slog.String("aoc_id", payload.AoCID),
		slog.String("discord_id", payload.DiscordID),
	)

	memberID := leaderboarddomain.MemberID(payload.AoCID)
	completed, err := h.leaderboardService.MemberCompleted(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to check completion for member %s: %w", payload.AoCID, err)
	}
	if !completed {
		return nil, nil
	}

	h.announceLateCompletion(ctx, memberID)

	grant, err := json.Marshal(events.RoleGrantRequestedPayload{
		AoCID:     payload.AoCID,
		DiscordID: payload.DiscordID,
		Reason:    "linked after completing all days",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal role grant payload: %w", err)
	}

	h.logger.InfoContext(ctx, "Linked member already completed, requesting role grant",
		slog.String("aoc_id", payload.AoCID),
		slog.String("discord_id", payload.DiscordID),
	)
	return []*message.Message{message.NewMessage(uuid.New().String(), grant)}, nil
}

// announceLateCompletion posts the full-completion announcement for a member
// who linked after finishing. The cycle announcement never reached them under
// a mention, so the link is the first moment the guild can be told. Delivery
// failure does not block the role grant.
func (h *LeaderboardHandlers) announceLateCompletion(ctx context.Context, memberID leaderboarddomain.MemberID) {
	if h.notifier == nil {
		return
	}

	name := leaderboarddomain.AnonymousName(memberID)
	if snapshot, err := h.leaderboardService.CurrentSnapshot(ctx); err == nil {
		name = snapshot.MemberName(memberID)
	} else {
		h.logger.WarnContext(ctx, "Could not load snapshot for display name",
			slog.String("aoc_id", string(memberID)), slog.Any("error", err))
	}

	results := h.notifier.AnnounceCompletions(ctx, []leaderboarddomain.CompletionEvent{{
		MemberID:   memberID,
		MemberName: name,
		Timestamp:  time.Now(),
	}})
	for _, res := range results {
		if res.Err != nil {
			h.logger.ErrorContext(ctx, "Failed to deliver late completion announcement",
				slog.String("description", res.Err.Description), slog.Any("error", res.Err))
		}
	}
}

// HandleUserUnlinked only records the unlink; the completion role is left in
// place, removing it is a moderator decision.
func (h *LeaderboardHandlers) HandleUserUnlinked(msg *message.Message) ([]*message.Message, error) {
	ctx, span := h.tracer.Start(msg.Context(), "HandleUserUnlinked")
	defer span.End()

	var payload events.UserUnlinkedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		h.logger.ErrorContext(ctx, "Failed to decode user unlinked payload",
			slog.String("message_id", msg.UUID), slog.Any("error", err))
		return nil, nil
	}

	h.logger.InfoContext(ctx, "User unlinked",
		slog.String("aoc_id", payload.AoCID),
		slog.String("discord_id", payload.DiscordID),
	)
	return nil, nil
}
