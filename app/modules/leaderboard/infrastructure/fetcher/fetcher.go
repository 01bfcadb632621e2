package leaderboardfetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/domain"
	"golang.org/x/time/rate"
)

const baseURL = "https://adventofcode.com"

// Fetcher retrieves raw leaderboard documents from the upstream API.
type Fetcher interface {
	Fetch(ctx context.Context, leaderboardID string, year int) ([]byte, error)
}

// HTTPFetcher fetches the private leaderboard JSON with the session cookie.
// The rate limiter is a hard floor independent of the scheduler interval;
// the API maintainers ask for at least 15 minutes between automated polls.
type HTTPFetcher struct {
	client    *http.Client
	sessionID string
	limiter   *rate.Limiter
	logger    *slog.Logger
}

func NewHTTPFetcher(sessionID string, minPollSpacing time.Duration, logger *slog.Logger) *HTTPFetcher {
	if minPollSpacing <= 0 {
		minPollSpacing = 15 * time.Minute
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: 30 * time.Second},
		sessionID: sessionID,
		limiter:   rate.NewLimiter(rate.Every(minPollSpacing), 1),
		logger:    logger,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, leaderboardID string, year int) ([]byte, error) {
	url := fmt.Sprintf("%s/%d/leaderboard/private/view/%s.json", baseURL, year, leaderboardID)

	if !f.limiter.Allow() {
		return nil, &leaderboarddomain.FetchError{
			URL: url,
			Err: fmt.Errorf("poll spacing floor not reached, refusing to hit the API"),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &leaderboarddomain.FetchError{URL: url, Err: err}
	}
	req.AddCookie(&http.Cookie{Name: "session", Value: f.sessionID})

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &leaderboarddomain.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// The API redirects to the login page on an expired session cookie,
		// which surfaces here as a non-200 after redirect or an HTML body.
		return nil, &leaderboarddomain.FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &leaderboarddomain.FetchError{URL: url, Err: err}
	}

	f.logger.DebugContext(ctx, "Fetched leaderboard",
		slog.String("leaderboard_id", leaderboardID),
		slog.Int("year", year),
		slog.Int("bytes", len(body)),
	)
	return body, nil
}
