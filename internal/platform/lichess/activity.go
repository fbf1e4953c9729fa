package lichess

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/tactics-srs/internal/domain"
	"github.com/phrazzld/tactics-srs/internal/platform/logger"
)

// ActivityPath is the NDJSON puzzle activity endpoint, relative to the base URL.
const ActivityPath = "/api/puzzle/activity"

// maxLineSize bounds a single NDJSON line.
const maxLineSize = 1 << 20

// Client errors
var (
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

// activityLine is one line of the activity feed.
type activityLine struct {
	Date   int64 `json:"date"`
	Win    bool  `json:"win"`
	Puzzle struct {
		ID string `json:"id"`
	} `json:"puzzle"`
}

// ActivityStats counts what an activity fetch saw.
type ActivityStats struct {
	// Delivered counts attempts handed to the callback.
	Delivered int
	// Old counts attempts at or before the since instant.
	Old int
	// Malformed counts lines that were not valid attempts.
	Malformed int
}

// Client is a minimal lichess.org API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client. token may be empty for public endpoints.
// If logger is nil, a default logger will be used.
func NewClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(slog.String("component", "lichess_client")),
	}
}

// HTTPClient exposes the underlying client so that other downloads share
// its timeout.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Activity streams the authenticated user's puzzle activity, newest first,
// and calls fn for every attempt strictly after since. At most limit lines
// are requested; zero leaves the server default. Lines that do not decode or lack a puzzle id are skipped.
func (c *Client) Activity(
	ctx context.Context,
	limit int,
	since time.Time,
	fn func(domain.Attempt) error,
) (ActivityStats, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	var stats ActivityStats

	u, err := url.Parse(c.baseURL + ActivityPath)
	if err != nil {
		return stats, fmt.Errorf("invalid lichess base url: %w", err)
	}
	if limit > 0 {
		q := u.Query()
		q.Set("max", strconv.Itoa(limit))
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return stats, fmt.Errorf("failed to build activity request: %w", err)
	}
	req.Header.Set("Accept", "application/x-ndjson")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return stats, fmt.Errorf("failed to fetch puzzle activity: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return stats, fmt.Errorf("%w: %s: %s", ErrUnexpectedStatus, resp.Status, strings.TrimSpace(string(body)))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry activityLine
		if err := json.Unmarshal([]byte(line), &entry); err != nil || entry.Puzzle.ID == "" || entry.Date <= 0 {
			stats.Malformed++
			continue
		}

		at := domain.InstantFromMillis(entry.Date)
		if !since.IsZero() && !at.After(since) {
			stats.Old++
			continue
		}

		attempt := domain.Attempt{
			UserID:      domain.LocalUserID,
			PuzzleID:    entry.Puzzle.ID,
			AttemptedAt: at,
			Result:      domain.ResultFromWin(entry.Win),
			Source:      domain.SourceLichess,
		}
		if err := fn(attempt); err != nil {
			return stats, err
		}
		stats.Delivered++
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("failed to read activity stream: %w", err)
	}

	log.Debug("puzzle activity read",
		slog.Int("delivered", stats.Delivered),
		slog.Int("old", stats.Old),
		slog.Int("malformed", stats.Malformed))
	return stats, nil
}
