package leaderboardnotifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/domain"
)

// DeliveryResult reports the outcome of dispatching one event.
type DeliveryResult struct {
	Description string
	Err         *leaderboarddomain.DeliveryError
}

// Resolver maps an AoC account to a linked Discord user, when one exists.
// Absence never blocks an announcement; it only changes how the member is
// rendered and blocks role grants.
type Resolver interface {
	Resolve(ctx context.Context, memberID leaderboarddomain.MemberID) (string, bool, error)
}

// Notifier dispatches achievement and completion announcements. Results are
// per event so the caller can log partial failures; partial failure never
// blocks snapshot persistence.
type Notifier interface {
	AnnounceAchievements(ctx context.Context, events []leaderboarddomain.AchievementEvent) []DeliveryResult
	AnnounceCompletions(ctx context.Context, events []leaderboarddomain.CompletionEvent) []DeliveryResult
}

// RoleGranter assigns the completion role to a linked Discord member.
type RoleGranter interface {
	GrantCompletionRole(ctx context.Context, discordUserID string) error
}

// WebhookNotifier posts batched announcements to a Discord webhook. All
// events of a batch share one webhook execution, so a transport failure
// marks every event in the batch as undelivered.
type WebhookNotifier struct {
	client     *http.Client
	webhookURL string
	username   string
	resolver   Resolver
	logger     *slog.Logger
}

func NewWebhookNotifier(webhookID, webhookToken, username string, resolver Resolver, logger *slog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		client:     &http.Client{Timeout: 15 * time.Second},
		webhookURL: fmt.Sprintf("https://discord.com/api/webhooks/%s/%s", webhookID, webhookToken),
		username:   username,
		resolver:   resolver,
		logger:     logger,
	}
}

func (n *WebhookNotifier) AnnounceAchievements(ctx context.Context, events []leaderboarddomain.AchievementEvent) []DeliveryResult {
	lines := make([]string, 0, len(events))
	results := make([]DeliveryResult, 0, len(events))
	for _, ev := range events {
		line := FormatAchievement(ev, n.displayName(ctx, ev.MemberID, ev.MemberName))
		lines = append(lines, line)
		results = append(results, DeliveryResult{Description: line})
	}
	return n.deliver(ctx, lines, results)
}

func (n *WebhookNotifier) AnnounceCompletions(ctx context.Context, events []leaderboarddomain.CompletionEvent) []DeliveryResult {
	lines := make([]string, 0, len(events))
	results := make([]DeliveryResult, 0, len(events))
	for _, ev := range events {
		line := FormatCompletion(ev, n.displayName(ctx, ev.MemberID, ev.MemberName))
		lines = append(lines, line)
		results = append(results, DeliveryResult{Description: line})
	}
	return n.deliver(ctx, lines, results)
}

func (n *WebhookNotifier) displayName(ctx context.Context, id leaderboarddomain.MemberID, fallback string) string {
	if n.resolver != nil {
		if discordID, ok, err := n.resolver.Resolve(ctx, id); err == nil && ok {
			return "<@" + discordID + ">"
		}
	}
	return fallback
}

func (n *WebhookNotifier) deliver(ctx context.Context, lines []string, results []DeliveryResult) []DeliveryResult {
	if len(lines) == 0 {
		return results
	}

	if err := n.executeWebhook(ctx, JoinMessages(lines)); err != nil {
		for i := range results {
			results[i].Err = &leaderboarddomain.DeliveryError{
				Description: results[i].Description,
				Err:         err,
			}
		}
	}
	return results
}

type webhookPayload struct {
	Content         string          `json:"content"`
	Username        string          `json:"username,omitempty"`
	AllowedMentions allowedMentions `json:"allowed_mentions"`
}

type allowedMentions struct {
	// Mentions render as names but never ping; the original disabled user
	// and everyone mentions on the webhook call.
	Parse []string `json:"parse"`
}

func (n *WebhookNotifier) executeWebhook(ctx context.Context, content string) error {
	payload, err := json.Marshal(webhookPayload{
		Content:         content,
		Username:        n.username,
		AllowedMentions: allowedMentions{Parse: []string{}},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	n.logger.DebugContext(ctx, "Webhook delivered", slog.Int("content_len", len(content)))
	return nil
}
