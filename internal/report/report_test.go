package report_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tactics-srs/internal/domain"
	"github.com/phrazzld/tactics-srs/internal/platform/sqlstore"
	"github.com/phrazzld/tactics-srs/internal/report"
	"github.com/phrazzld/tactics-srs/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var now = time.Date(2024, time.March, 10, 15, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func seed(t *testing.T, db *sqlx.DB) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, sqlstore.NewPuzzleStore(db, nil).UpsertBatch(ctx, []domain.Puzzle{
		{ID: "p1", Rating: intPtr(1500), Themes: []string{"fork", "short"}, FEN: "8/8/8/8/8/8/8/8 w - - 0 1", Moves: "a1a2"},
		{ID: "p2", Rating: intPtr(1700), Themes: []string{"pin"}, FEN: "8/8/8/8/8/8/8/8 w - - 0 1", Moves: "a1a2"},
	}))

	attempts := sqlstore.NewAttemptStore(db, nil)
	for _, a := range []struct {
		id     string
		at     string
		result domain.Result
	}{
		{"p1", "2024-03-09T10:00:00Z", domain.ResultLoss},
		{"p1", "2024-03-10T09:00:00Z", domain.ResultWin},
		{"p2", "2024-03-05T10:00:00Z", domain.ResultLoss},
		{"p3", "2023-12-01T10:00:00Z", domain.ResultWin},
	} {
		at, err := time.Parse(time.RFC3339, a.at)
		require.NoError(t, err)
		attempt, err := domain.NewAttempt(a.id, at, a.result, domain.SourceLichess)
		require.NoError(t, err)
		_, err = attempts.Create(ctx, attempt)
		require.NoError(t, err)
	}

	schedule := sqlstore.NewScheduleStore(db, nil)
	for _, e := range []struct {
		id  string
		due domain.Date
	}{
		{"p2", domain.NewDate(2024, time.March, 8)},
		{"p1", domain.NewDate(2024, time.March, 10)},
		{"p4", domain.NewDate(2024, time.March, 11)},
		{"p5", domain.NewDate(2024, time.March, 15)},
		{"p6", domain.NewDate(2024, time.April, 1)},
	} {
		require.NoError(t, schedule.Upsert(ctx, &domain.ScheduleEntry{
			UserID:        domain.LocalUserID,
			PuzzleID:      e.id,
			IntervalDays:  1,
			LastResult:    domain.ResultLoss,
			LastReviewed:  e.due.AddDays(-1),
			DueDate:       e.due,
			SuccessStreak: 0,
		}))
	}
}

func newGenerator(t *testing.T, opts report.Options) *report.Generator {
	t.Helper()
	db := testdb.Open(t)
	seed(t, db)
	return report.NewGenerator(
		sqlstore.NewStatsStore(db, nil),
		sqlstore.NewScheduleStore(db, nil),
		opts,
		time.UTC,
		func() time.Time { return now },
		nil,
	)
}

func TestBuild(t *testing.T) {
	t.Parallel()

	r, err := newGenerator(t, report.Options{}).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.NewDate(2024, time.March, 10), r.Today)
	assert.Equal(t, 4, r.KPIs.AllTime.Attempts)
	assert.Equal(t, 2, r.KPIs.AllTime.Wins)
	assert.Equal(t, 3, r.KPIs.Last7.Attempts)
	assert.Equal(t, 1, r.KPIs.Last7.Wins)
	assert.Equal(t, 3, r.KPIs.Last30.Attempts)

	require.Len(t, r.Buckets, 5)
	ids := make(map[string][]string)
	for _, b := range r.Buckets {
		for _, it := range b.Items {
			ids[b.ID] = append(ids[b.ID], it.PuzzleID)
		}
	}
	assert.Equal(t, map[string][]string{
		"overdue":   {"p2"},
		"due-today": {"p1"},
		"due-plus1": {"p4"},
		"due-p7":    {"p5"},
		"due-later": {"p6"},
	}, ids)

	require.Len(t, r.Misses, 2)
	assert.Equal(t, "p1", r.Misses[0].PuzzleID)
	assert.Equal(t, 2, r.Misses[0].TotalAttempts)
	assert.Equal(t, "p2", r.Misses[1].PuzzleID)

	require.Len(t, r.Recent, 4)
	assert.Equal(t, "p1", r.Recent[0].PuzzleID)
	assert.Equal(t, domain.ResultWin, r.Recent[0].Result)

	assert.Equal(t, []report.ThemeStat{
		{Theme: "fork", Attempts: 2, Wins: 1},
		{Theme: "short", Attempts: 2, Wins: 1},
		{Theme: "pin", Attempts: 1, Wins: 0},
	}, r.Themes90)
	assert.Empty(t, r.Struggle90)
}

func TestWriteHTML(t *testing.T) {
	t.Parallel()

	r, err := newGenerator(t, report.Options{}).Build(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.WriteHTML(&buf, r, time.UTC))
	html := buf.String()

	assert.Contains(t, html, "Lichess Puzzle Report — 2024-03-10")
	assert.Contains(t, html, `<div class="label">All-time attempts</div><div class="value">4</div>`)
	assert.Contains(t, html, `<div class="label">All-time accuracy</div><div class="value">50.0%</div>`)
	assert.Contains(t, html, `<div class="label">Last 7 days accuracy</div><div class="value">33.3%</div>`)
	assert.Contains(t, html, "Due Today (1)")
	assert.Contains(t, html, "Overdue (1)")
	assert.Contains(t, html, `<a href="https://lichess.org/training/p1" target="_blank" rel="noopener">p1</a>`)
	assert.Contains(t, html, "Fork, Short Tactic")
	assert.Contains(t, html, "2024-03-10 09:00:00 (6h ago)")
	assert.Contains(t, html, "<td>none yet</td>")
}

func TestWrite(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "reports")
	g := newGenerator(t, report.Options{OutputDir: dir, HTML: true, XLSX: true, RecentLimit: 2})

	written, err := g.Write(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, report.HTMLFile),
		filepath.Join(dir, report.XLSXFile),
	}, written)

	html, err := os.ReadFile(written[0])
	require.NoError(t, err)
	assert.Contains(t, string(html), "Recent Attempts")

	f, err := excelize.OpenFile(written[1])
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{
		report.SheetSummary,
		report.SheetDue,
		report.SheetMisses,
		report.SheetRecent,
		report.SheetThemes90,
		report.SheetThemesAll,
	}, f.GetSheetList())

	due, err := f.GetRows(report.SheetDue)
	require.NoError(t, err)
	require.Len(t, due, 6)
	assert.Equal(t, []string{"Bucket", "Puzzle", "URL"}, due[0][:3])
	assert.Equal(t, []string{"Overdue", "p2", "https://lichess.org/training/p2"}, due[1][:3])

	recent, err := f.GetRows(report.SheetRecent)
	require.NoError(t, err)
	assert.Len(t, recent, 3)

	summary, err := f.GetRows(report.SheetSummary)
	require.NoError(t, err)
	require.Len(t, summary, 4)
	assert.Equal(t, []string{"All time", "4", "2"}, summary[1][:3])
}

func TestWrite_Disabled(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "reports")
	written, err := newGenerator(t, report.Options{OutputDir: dir}).Write(context.Background())
	require.NoError(t, err)
	assert.Empty(t, written)
	assert.NoDirExists(t, dir)
}
