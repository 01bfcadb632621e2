package leaderboardnotifier

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const discordAPIBase = "https://discord.com/api/v10"

// DiscordRoleGranter assigns the completion role through the Discord REST
// API using the bot token. Grants are idempotent on Discord's side; granting
// an already-held role is a no-op there.
type DiscordRoleGranter struct {
	client   *http.Client
	botToken string
	guildID  string
	roleID   string
	logger   *slog.Logger
}

func NewDiscordRoleGranter(botToken, guildID, roleID string, logger *slog.Logger) *DiscordRoleGranter {
	return &DiscordRoleGranter{
		client:   &http.Client{Timeout: 15 * time.Second},
		botToken: botToken,
		guildID:  guildID,
		roleID:   roleID,
		logger:   logger,
	}
}

func (g *DiscordRoleGranter) GrantCompletionRole(ctx context.Context, discordUserID string) error {
	url := fmt.Sprintf("%s/guilds/%s/members/%s/roles/%s", discordAPIBase, g.guildID, discordUserID, g.roleID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+g.botToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("role grant returned status %d", resp.StatusCode)
	}

	g.logger.InfoContext(ctx, "Completion role granted",
		slog.String("discord_user_id", discordUserID),
		slog.String("role_id", g.roleID),
	)
	return nil
}
