package api

import (
	"strings"
	"time"

	"github.com/phrazzld/tactics-srs/internal/service/practice"
	"github.com/phrazzld/tactics-srs/internal/store"
)

// LogRequest is an attempt to log, from the query string, a form or a JSON body.
type LogRequest struct {
	PuzzleID string `json:"puzzle_id" validate:"required,max=64"`
	Result   string `json:"result"    validate:"required,oneof=win loss"`
}

// normalize trims the fields and lowercases the result.
func (r *LogRequest) normalize() {
	r.PuzzleID = strings.TrimSpace(r.PuzzleID)
	r.Result = strings.ToLower(strings.TrimSpace(r.Result))
}

// LogResponse is the successful response of the log endpoint.
type LogResponse struct {
	OK       bool   `json:"ok"`
	PuzzleID string `json:"puzzle_id"`
	Result   string `json:"result"`
	// Deduplicated is set when the attempt repeated a recent one and was not stored.
	Deduplicated bool `json:"deduplicated,omitempty"`
}

// HealthResponse is the response of the health endpoint.
type HealthResponse struct {
	OK   bool   `json:"ok"`
	Time string `json:"time"`
}

// QueueItemResponse is one due puzzle.
type QueueItemResponse struct {
	PuzzleID      string     `json:"puzzle_id"`
	URL           string     `json:"url"`
	Themes        []string   `json:"themes"`
	Rating        *int       `json:"rating,omitempty"`
	DueDate       string     `json:"due_date"`
	IntervalDays  int        `json:"interval_days"`
	SuccessStreak int        `json:"success_streak"`
	LastResult    string     `json:"last_result"`
	Attempts      int        `json:"attempts"`
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`
}

// QueueResponse is the due queue as JSON.
type QueueResponse struct {
	Today          string              `json:"today"`
	IncludeOverdue bool                `json:"include_overdue"`
	Count          int                 `json:"count"`
	Stats          practice.TodayStats `json:"stats"`
	Items          []QueueItemResponse `json:"items"`
}

func queueItemToResponse(it store.DueItem) QueueItemResponse {
	resp := QueueItemResponse{
		PuzzleID:      it.PuzzleID,
		URL:           it.URL(),
		Themes:        it.Themes,
		Rating:        it.Rating,
		DueDate:       it.DueDate.String(),
		IntervalDays:  it.IntervalDays,
		SuccessStreak: it.SuccessStreak,
		LastResult:    string(it.LastResult),
		Attempts:      it.Attempts,
	}
	if resp.Themes == nil {
		resp.Themes = []string{}
	}
	if !it.LastAttemptAt.IsZero() {
		at := it.LastAttemptAt.UTC()
		resp.LastAttemptAt = &at
	}
	return resp
}

func queueToResponse(q *practice.Queue) QueueResponse {
	items := make([]QueueItemResponse, 0, len(q.Items))
	for _, it := range q.Items {
		items = append(items, queueItemToResponse(it))
	}
	return QueueResponse{
		Today:          q.Today.String(),
		IncludeOverdue: q.IncludeOverdue,
		Count:          len(items),
		Stats:          q.Stats,
		Items:          items,
	}
}
