package api

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/tactics-srs/internal/api/shared"
	"github.com/phrazzld/tactics-srs/internal/platform/logger"
	"github.com/phrazzld/tactics-srs/internal/report"
	"github.com/phrazzld/tactics-srs/internal/service/practice"
)

//go:embed templates/queue.html.tmpl
var templateFS embed.FS

// PracticeService is the part of the practice service the handlers use.
type PracticeService interface {
	DueQueue(ctx context.Context) (*practice.Queue, error)
	LogAttempt(ctx context.Context, puzzleID, result string) (*practice.LogResult, error)
}

// ReviewHandler serves the review queue and attempt logging.
type ReviewHandler struct {
	svc    PracticeService
	loc    *time.Location
	now    func() time.Time
	page   *template.Template
	logger *slog.Logger
}

// NewReviewHandler creates a ReviewHandler. A nil loc means time.Local, a
// nil now means time.Now. If logger is nil, a default logger will be used.
func NewReviewHandler(svc PracticeService, loc *time.Location, now func() time.Time, logger *slog.Logger) *ReviewHandler {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	page := template.Must(template.New("queue.html.tmpl").Funcs(template.FuncMap{
		"themes": func(themes []string) string { return report.Labels(themes, 4) },
		"local": func(t time.Time) string {
			if t.IsZero() {
				return "never"
			}
			return t.In(loc).Format("2006-01-02 15:04")
		},
	}).ParseFS(templateFS, "templates/queue.html.tmpl"))

	return &ReviewHandler{
		svc:    svc,
		loc:    loc,
		now:    now,
		page:   page,
		logger: logger.With(slog.String("component", "review_handler")),
	}
}

// Root handles GET / by sending the browser to the queue.
func (h *ReviewHandler) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/queue", http.StatusFound)
}

// Favicon handles GET /favicon.ico with an empty response.
func (h *ReviewHandler) Favicon(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// Health handles GET /health.
func (h *ReviewHandler) Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		OK:   true,
		Time: h.now().In(h.loc).Format(time.RFC3339),
	})
}

// NotFound answers unknown routes.
func (h *ReviewHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithError(w, r, http.StatusNotFound, "not found")
}

// QueuePage handles GET /queue by rendering the due queue as HTML.
func (h *ReviewHandler) QueuePage(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.DueQueue(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load queue")
		return
	}

	var buf bytes.Buffer
	if err := h.page.Execute(&buf, q); err != nil {
		HandleAPIError(w, r, err, "Failed to render queue")
		return
	}
	shared.RespondWithHTML(w, r, http.StatusOK, buf.Bytes())
}

// QueueJSON handles GET /api/queue.
func (h *ReviewHandler) QueueJSON(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.DueQueue(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load queue")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, queueToResponse(q))
}

// Log handles GET and POST /log by recording an attempt and rescheduling
// the puzzle.
func (h *ReviewHandler) Log(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	req, err := parseLogRequest(r)
	if err != nil {
		log.Debug("unreadable log request", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, practice.ErrInvalidInput.Error())
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, practice.ErrInvalidInput.Error())
		return
	}

	res, err := h.svc.LogAttempt(r.Context(), req.PuzzleID, req.Result)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to log attempt")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LogResponse{
		OK:           true,
		PuzzleID:     res.PuzzleID,
		Result:       string(res.Result),
		Deduplicated: res.Deduplicated,
	})
}
