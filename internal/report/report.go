package report

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/phrazzld/tactics-srs/internal/domain"
	"github.com/phrazzld/tactics-srs/internal/platform/logger"
	"github.com/phrazzld/tactics-srs/internal/store"
)

// Report file names inside the output directory.
const (
	HTMLFile = "index.html"
	XLSXFile = "puzzles.xlsx"
)

const (
	// bucketLimit caps every due bucket.
	bucketLimit = 2000
	// missLimit caps the misses table.
	missLimit = 1000
	// struggleMinAttempts and struggleMaxAccuracy select struggle themes.
	struggleMinAttempts = 8
	struggleMaxAccuracy = 0.6
)

// Options configures a Generator.
type Options struct {
	OutputDir   string
	HTML        bool
	XLSX        bool
	RecentLimit int
}

// Bucket is a named slice of the schedule.
type Bucket struct {
	ID    string
	Title string
	Items []store.DueItem
}

// ThemeStat is the attempt count and win count of one theme.
type ThemeStat struct {
	Theme    string
	Attempts int
	Wins     int
}

// Label returns the display name of the theme.
func (t ThemeStat) Label() string { return Label(t.Theme) }

// Accuracy returns the win share in [0,1].
func (t ThemeStat) Accuracy() float64 {
	if t.Attempts == 0 {
		return 0
	}
	return float64(t.Wins) / float64(t.Attempts)
}

// KPIs are the headline numbers of the report.
type KPIs struct {
	AllTime store.Summary
	Last7   store.Summary
	Last30  store.Summary
}

// Report is everything the report files show.
type Report struct {
	GeneratedAt time.Time
	Today       domain.Date
	KPIs        KPIs
	Buckets     []Bucket
	Misses      []store.AttemptView
	Recent      []store.AttemptView
	Themes90    []ThemeStat
	Struggle90  []ThemeStat
	ThemesAll   []ThemeStat
}

// Generator collects report data and writes the report files.
type Generator struct {
	stats    store.StatsStore
	schedule store.ScheduleStore
	opts     Options
	loc      *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

// NewGenerator creates a Generator. A nil loc means time.Local and a nil
// now means time.Now. If logger is nil, a default logger will be used.
func NewGenerator(
	stats store.StatsStore,
	schedule store.ScheduleStore,
	opts Options,
	loc *time.Location,
	now func() time.Time,
	logger *slog.Logger,
) *Generator {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = 100
	}
	return &Generator{
		stats:    stats,
		schedule: schedule,
		opts:     opts,
		loc:      loc,
		now:      now,
		logger:   logger.With(slog.String("component", "report")),
	}
}

// Build reads the report data from the stores.
func (g *Generator) Build(ctx context.Context) (*Report, error) {
	now := g.now()
	today := domain.LocalDateOf(now, g.loc)
	r := &Report{GeneratedAt: now.In(g.loc), Today: today}

	var err error
	if r.KPIs.AllTime, err = g.stats.Summary(ctx, time.Time{}); err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}
	if r.KPIs.Last7, err = g.stats.Summary(ctx, now.AddDate(0, 0, -7)); err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}
	if r.KPIs.Last30, err = g.stats.Summary(ctx, now.AddDate(0, 0, -30)); err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}

	for _, b := range bucketsFor(today) {
		items, err := g.schedule.Due(ctx, b.filter)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", b.id, err)
		}
		r.Buckets = append(r.Buckets, Bucket{ID: b.id, Title: b.title, Items: items})
	}

	if r.Misses, err = g.stats.Misses(ctx, now.AddDate(0, 0, -30), missLimit); err != nil {
		return nil, fmt.Errorf("failed to list misses: %w", err)
	}
	if r.Recent, err = g.stats.Recent(ctx, g.opts.RecentLimit); err != nil {
		return nil, fmt.Errorf("failed to list recent attempts: %w", err)
	}

	rows90, err := g.stats.ThemeAttempts(ctx, now.AddDate(0, 0, -90))
	if err != nil {
		return nil, fmt.Errorf("failed to read theme attempts: %w", err)
	}
	r.Themes90 = aggregateThemes(rows90)
	for _, t := range r.Themes90 {
		if t.Attempts >= struggleMinAttempts && t.Accuracy() <= struggleMaxAccuracy {
			r.Struggle90 = append(r.Struggle90, t)
		}
	}

	rowsAll, err := g.stats.ThemeAttempts(ctx, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to read theme attempts: %w", err)
	}
	r.ThemesAll = aggregateThemes(rowsAll)

	return r, nil
}

// Write builds the report and writes the enabled files into the output
// directory. It returns the paths written.
func (g *Generator) Write(ctx context.Context) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	if !g.opts.HTML && !g.opts.XLSX {
		log.Debug("report output disabled")
		return nil, nil
	}

	r, err := g.Build(ctx)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(g.opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	var written []string
	if g.opts.HTML {
		path := filepath.Join(g.opts.OutputDir, HTMLFile)
		if err := writeHTMLFile(path, r, g.loc); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if g.opts.XLSX {
		path := filepath.Join(g.opts.OutputDir, XLSXFile)
		if err := WriteXLSX(path, r, g.loc); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	log.Info("report written",
		slog.Any("files", written),
		slog.Int("attempts", r.KPIs.AllTime.Attempts))
	return written, nil
}

type bucketSpec struct {
	id     string
	title  string
	filter store.DueFilter
}

func bucketsFor(today domain.Date) []bucketSpec {
	yesterday := today.AddDays(-1)
	tomorrow := today.AddDays(1)
	twoDays := today.AddDays(2)
	week := today.AddDays(7)
	later := today.AddDays(8)
	return []bucketSpec{
		{"overdue", "Overdue", store.DueFilter{To: &yesterday, Limit: bucketLimit}},
		{"due-today", "Due Today", store.DueFilter{From: &today, To: &today, Limit: bucketLimit}},
		{"due-plus1", "+1 Day", store.DueFilter{From: &tomorrow, To: &tomorrow, Limit: bucketLimit}},
		{"due-p7", "+2–7 Days", store.DueFilter{From: &twoDays, To: &week, Limit: bucketLimit}},
		{"due-later", "Later", store.DueFilter{From: &later, Limit: bucketLimit}},
	}
}

// aggregateThemes counts attempts and wins per theme, most attempted first.
func aggregateThemes(rows []store.ThemeAttempt) []ThemeStat {
	byTheme := make(map[string]*ThemeStat)
	for _, row := range rows {
		for _, theme := range row.Themes {
			st, ok := byTheme[theme]
			if !ok {
				st = &ThemeStat{Theme: theme}
				byTheme[theme] = st
			}
			st.Attempts++
			if row.Result.IsWin() {
				st.Wins++
			}
		}
	}

	out := make([]ThemeStat, 0, len(byTheme))
	for _, st := range byTheme {
		out = append(out, *st)
	}
	slices.SortFunc(out, func(a, b ThemeStat) int {
		if c := cmp.Compare(b.Attempts, a.Attempts); c != 0 {
			return c
		}
		return cmp.Compare(a.Theme, b.Theme)
	})
	return out
}
