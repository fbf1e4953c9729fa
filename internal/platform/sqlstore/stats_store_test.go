package sqlstore_test

import (
	"testing"
	"time"

	"github.com/phrazzld/tactics-srs/internal/domain"
	"github.com/phrazzld/tactics-srs/internal/platform/sqlstore"
	"github.com/phrazzld/tactics-srs/internal/store"
	"github.com/phrazzld/tactics-srs/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStats(t *testing.T) *sqlstore.StatsStore {
	t.Helper()
	db := testdb.Open(t)
	attempts := sqlstore.NewAttemptStore(db, nil)
	puzzles := sqlstore.NewPuzzleStore(db, nil)

	require.NoError(t, puzzles.UpsertBatch(ctx, []domain.Puzzle{
		{ID: "p1", Themes: []string{"fork", "short"}},
		{ID: "p2", Themes: []string{"pin"}},
	}))
	for _, a := range []*domain.Attempt{
		mustAttempt(t, "p1", "2024-03-01T09:00:00Z", domain.ResultLoss),
		mustAttempt(t, "p1", "2024-03-05T09:00:00Z", domain.ResultWin),
		mustAttempt(t, "p2", "2024-03-06T09:00:00Z", domain.ResultLoss),
		mustAttempt(t, "p3", "2024-03-07T09:00:00Z", domain.ResultWin),
	} {
		_, err := attempts.Create(ctx, a)
		require.NoError(t, err)
	}
	return sqlstore.NewStatsStore(db, nil)
}

func TestStatsStore_Summary(t *testing.T) {
	t.Parallel()
	s := seedStats(t)

	all, err := s.Summary(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, store.Summary{Attempts: 4, Wins: 2}, all)
	assert.Equal(t, 2, all.Losses())
	assert.InDelta(t, 0.5, all.Accuracy(), 1e-9)

	recent, err := s.Summary(ctx, ts("2024-03-05T09:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, store.Summary{Attempts: 3, Wins: 2}, recent)

	none, err := s.Summary(ctx, ts("2025-01-01T00:00:00Z"))
	require.NoError(t, err)
	assert.Zero(t, none.Attempts)
	assert.Zero(t, none.Accuracy())
}

func TestStatsStore_RecentAndMisses(t *testing.T) {
	t.Parallel()
	s := seedStats(t)

	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "p3", recent[0].PuzzleID)
	assert.Equal(t, "p2", recent[1].PuzzleID)
	assert.Equal(t, []string{"pin"}, recent[1].Themes)
	assert.Equal(t, domain.ResultLoss, recent[1].Result)

	misses, err := s.Misses(ctx, ts("2024-03-01T00:00:00Z"), 10)
	require.NoError(t, err)
	require.Len(t, misses, 2)
	assert.Equal(t, "p2", misses[0].PuzzleID)
	assert.Equal(t, "p1", misses[1].PuzzleID)
	assert.Equal(t, 2, misses[1].TotalAttempts)
	assert.Equal(t, ts("2024-03-01T09:00:00Z"), misses[1].AttemptedAt)
}

func TestStatsStore_ThemeAttempts(t *testing.T) {
	t.Parallel()
	s := seedStats(t)

	rows, err := s.ThemeAttempts(ctx, ts("2024-03-05T00:00:00Z"))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	var themed int
	for _, r := range rows {
		if len(r.Themes) > 0 {
			themed++
		}
	}
	assert.Equal(t, 2, themed, "attempts of uncatalogued puzzles carry no themes")
}
