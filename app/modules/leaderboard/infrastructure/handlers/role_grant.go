package leaderboardhandlers

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/advent-bot/app/events"
	"github.com/Black-And-White-Club/advent-bot/internal/observability"
	"github.com/ThreeDotsLabs/watermill/message"
)

// HandleRoleGrantRequested assigns the completion role via the Discord API.
// Errors are returned so the router retries; Discord treats re-granting a
// held role as a no-op, which makes the retry safe.
func (h *LeaderboardHandlers) HandleRoleGrantRequested(msg *message.Message) ([]*message.Message, error) {
	ctx, span := h.tracer.Start(msg.Context(), "HandleRoleGrantRequested")
	defer span.End()

	var payload events.RoleGrantRequestedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		h.logger.ErrorContext(ctx, "Failed to decode role grant payload",
			slog.String("message_id", msg.UUID), slog.Any("error", err))
		return nil, nil
	}

	if h.roleGranter == nil {
		h.logger.WarnContext(ctx, "No role granter configured, dropping grant request",
			slog.String("discord_id", payload.DiscordID))
		return nil, nil
	}

	if err := h.roleGranter.GrantCompletionRole(ctx, payload.DiscordID); err != nil {
		h.metrics.RoleGrantsTotal.WithLabelValues(observability.RoleGrantResultFailure).Inc()
		h.logger.ErrorContext(ctx, "Failed to grant completion role",
			slog.String("discord_id", payload.DiscordID),
			slog.String("reason", payload.Reason),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to grant role to %s: %w", payload.DiscordID, err)
	}

	h.metrics.RoleGrantsTotal.WithLabelValues(observability.RoleGrantResultSuccess).Inc()
	h.logger.InfoContext(ctx, "Granted completion role",
		slog.String("aoc_id", payload.AoCID),
		slog.String("discord_id", payload.DiscordID),
	)
	return nil, nil
}
