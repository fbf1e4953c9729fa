package syncer_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/klauspost/compress/zstd"
	"github.com/phrazzld/tactics-srs/internal/domain"
	"github.com/phrazzld/tactics-srs/internal/platform/lichess"
	"github.com/phrazzld/tactics-srs/internal/platform/sqlstore"
	"github.com/phrazzld/tactics-srs/internal/service/syncer"
	"github.com/phrazzld/tactics-srs/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource replays a fixed feed, newest first, honouring since.
type fakeSource struct {
	feed   []domain.Attempt
	since  []time.Time
	limits []int
	err    error
}

func (f *fakeSource) Activity(
	_ context.Context,
	limit int,
	since time.Time,
	fn func(domain.Attempt) error,
) (lichess.ActivityStats, error) {
	f.since = append(f.since, since)
	f.limits = append(f.limits, limit)
	var stats lichess.ActivityStats
	if f.err != nil {
		return stats, f.err
	}
	for _, a := range f.feed {
		if !since.IsZero() && !a.AttemptedAt.After(since) {
			stats.Old++
			continue
		}
		if err := fn(a); err != nil {
			return stats, err
		}
		stats.Delivered++
	}
	return stats, nil
}

func feedAttempt(id string, at string, win bool) domain.Attempt {
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		panic(err)
	}
	return domain.Attempt{
		UserID:      domain.LocalUserID,
		PuzzleID:    id,
		AttemptedAt: t.UTC(),
		Result:      domain.ResultFromWin(win),
		Source:      domain.SourceLichess,
	}
}

func newService(t *testing.T, db *sqlx.DB, src syncer.ActivitySource, opts syncer.Options) *syncer.Service {
	t.Helper()
	return syncer.NewService(
		db,
		sqlstore.NewUserStore(db, nil),
		sqlstore.NewAttemptStore(db, nil),
		sqlstore.NewPuzzleStore(db, nil),
		src,
		opts,
		nil,
	)
}

func TestAttempts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testdb.Open(t)

	src := &fakeSource{feed: []domain.Attempt{
		feedAttempt("b", "2024-03-09T10:00:00Z", true),
		feedAttempt("a", "2024-03-08T10:00:00Z", false),
		feedAttempt("b", "2024-03-07T10:00:00Z", false),
	}}
	svc := newService(t, db, src, syncer.Options{Username: "magnus", MaxAttempts: 200})

	res, err := svc.Attempts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Inserted)
	assert.Equal(t, []string{"a", "b"}, res.Changed)
	assert.True(t, src.since[0].IsZero())
	assert.Equal(t, 200, src.limits[0])
	assert.Equal(t, 3, testdb.CountRows(t, db, "attempts"))

	name, err := sqlstore.NewUserStore(db, nil).Username(ctx)
	require.NoError(t, err)
	assert.Equal(t, "magnus", name)

	// A second sync only asks for what is newer than the stored history.
	src.feed = append([]domain.Attempt{feedAttempt("c", "2024-03-10T08:00:00Z", true)}, src.feed...)
	res, err = svc.Attempts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 3, res.Feed.Old)
	assert.Equal(t, []string{"c"}, res.Changed)
	assert.Equal(t, time.Date(2024, time.March, 9, 10, 0, 0, 0, time.UTC), src.since[1])
}

func TestAttempts_CutoffIgnoresLocalAttempts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testdb.Open(t)

	local, err := domain.NewAttempt("x", time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC), domain.ResultWin, domain.SourceLocal)
	require.NoError(t, err)
	_, err = sqlstore.NewAttemptStore(db, nil).Create(ctx, local)
	require.NoError(t, err)

	src := &fakeSource{feed: []domain.Attempt{feedAttempt("y", "2024-03-09T10:00:00Z", true)}}
	res, err := newService(t, db, src, syncer.Options{}).Attempts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.True(t, src.since[0].IsZero())
}

func TestAttempts_Duplicates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testdb.Open(t)

	src := &fakeSource{feed: []domain.Attempt{
		feedAttempt("a", "2024-03-08T10:00:00Z", false),
		feedAttempt("a", "2024-03-08T10:00:00Z", false),
	}}
	res, err := newService(t, db, src, syncer.Options{}).Attempts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Duplicates)
}

func TestAttempts_FetchError(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)

	src := &fakeSource{err: lichess.ErrUnexpectedStatus}
	_, err := newService(t, db, src, syncer.Options{}).Attempts(context.Background())
	assert.ErrorIs(t, err, lichess.ErrUnexpectedStatus)
	assert.Zero(t, testdb.CountRows(t, db, "attempts"))
}

func TestAttempts_LichessClient(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintln(w, `{"date":1709978400000,"win":true,"puzzle":{"id":"k9Xy2"}}`)
		_, _ = fmt.Fprintln(w, `{"date":1709892000000,"win":false,"puzzle":{"id":"k9Xy2"}}`)
	}))
	t.Cleanup(srv.Close)

	client := lichess.NewClient(srv.URL, "", 5*time.Second, nil)
	res, err := newService(t, db, client, syncer.Options{}).Attempts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, []string{"k9Xy2"}, res.Changed)
}

const dump = `PuzzleId,FEN,Moves,Rating,RatingDeviation,Popularity,NbPlays,Themes,GameUrl
p1,8/8/8/8/8/8/8/8 w - - 0 1,a1a2,1500,70,90,100,fork short,https://lichess.org/g1
p2,8/8/8/8/8/8/8/8 w - - 0 1,a1a2,1600,70,90,100,pin,https://lichess.org/g2
bad,8/8/8/8/8/8/8/8 w - - 0 1,a1a2,x,70,90,100,pin,
p3,8/8/8/8/8/8/8/8 w - - 0 1,a1a2,1700,70,90,100,mateIn2,https://lichess.org/g3
p4,8/8/8/8/8/8/8/8 w - - 0 1,a1a2,1800,70,90,100,,https://lichess.org/g4
p5,8/8/8/8/8/8/8/8 w - - 0 1,a1a2,1900,70,90,100,endgame,https://lichess.org/g5
`

func writeDump(t *testing.T, csv string) string {
	t.Helper()
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "lichess_db_puzzle.csv.zst")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return "file://" + path
}

func TestPuzzles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testdb.Open(t)

	svc := newService(t, db, &fakeSource{}, syncer.Options{BatchSize: 2})
	res, err := svc.Puzzles(ctx, writeDump(t, dump))
	require.NoError(t, err)
	assert.Equal(t, syncer.PuzzlesResult{Upserted: 5, Skipped: 1, Batches: 3}, res)
	assert.Equal(t, 5, testdb.CountRows(t, db, "puzzles"))

	p, err := sqlstore.NewPuzzleStore(db, nil).Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"fork", "short"}, p.Themes)
	assert.Equal(t, 1500, *p.Rating)

	// Re-importing an updated dump replaces rows in place.
	updated := strings.Replace(dump, "p1,8/8/8/8/8/8/8/8 w - - 0 1,a1a2,1500", "p1,8/8/8/8/8/8/8/8 w - - 0 1,a1a2,1550", 1)
	_, err = svc.Puzzles(ctx, writeDump(t, updated))
	require.NoError(t, err)
	p, err = sqlstore.NewPuzzleStore(db, nil).Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1550, *p.Rating)
	assert.Equal(t, 5, testdb.CountRows(t, db, "puzzles"))
}

func TestPuzzles_Errors(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)
	svc := newService(t, db, &fakeSource{}, syncer.Options{})

	_, err := svc.Puzzles(context.Background(), "s3://bucket/dump.zst")
	assert.ErrorIs(t, err, lichess.ErrUnsupportedScheme)

	_, err = svc.Puzzles(context.Background(), writeDump(t, "PuzzleId,Rating\n"))
	assert.ErrorIs(t, err, lichess.ErrMissingColumn)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Puzzles(ctx, writeDump(t, dump))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, testdb.CountRows(t, db, "puzzles"))
}
