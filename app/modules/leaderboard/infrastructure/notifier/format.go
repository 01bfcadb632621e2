package leaderboardnotifier

import (
	"fmt"
	"strings"
	"unicode/utf8"

	leaderboarddomain "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/domain"
)

// Discord caps message content at 2000 characters. When a batch exceeds it
// we cut well below the cap; a wall of truncated updates reads as spam.
const maxContentLen = 2000

// FormatAchievement renders a single star announcement line. The star glyphs
// mirror the column alignment trick from the old notifier: one full-width
// star for part one, two for part two or a completed day.
func FormatAchievement(ev leaderboarddomain.AchievementEvent, displayName string) string {
	marker := "﹡　"
	if ev.Part == leaderboarddomain.PartTwo || ev.DayComplete {
		marker = "﹡﹡"
	}
	return fmt.Sprintf("[%s] %s solved Day #%d.", marker, displayName, ev.Day)
}

// FormatCompletion renders the once-per-period full-completion announcement.
func FormatCompletion(ev leaderboarddomain.CompletionEvent, displayName string) string {
	return fmt.Sprintf("🎄 %s has collected every star this year. The leaderboard bows to you.", displayName)
}

// JoinMessages joins announcement lines into one webhook payload, truncating
// oversized batches with a trailing notice.
func JoinMessages(lines []string) string {
	content := strings.Join(lines, "\n")
	if len(content) > maxContentLen {
		// The star glyphs are multi-byte, so back the cut up to a rune
		// boundary or the payload ships invalid UTF-8.
		cut := maxContentLen / 3
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut] + "... and more updates."
	}
	return content
}
