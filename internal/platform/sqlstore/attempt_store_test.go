package sqlstore_test

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tactics-srs/internal/domain"
	"github.com/phrazzld/tactics-srs/internal/platform/sqlstore"
	"github.com/phrazzld/tactics-srs/internal/store"
	"github.com/phrazzld/tactics-srs/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptStore_Create(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)
	s := sqlstore.NewAttemptStore(db, nil)

	a := mustAttempt(t, "00sHx", "2024-03-01T10:00:00Z", domain.ResultWin)
	ms := int64(12000)
	a.TimeMS = &ms
	a.PuzzleRatingAfter = intPtr(1500)

	inserted, err := s.Create(ctx, a)
	require.NoError(t, err)
	assert.True(t, inserted)

	t.Run("duplicate instant is ignored", func(t *testing.T) {
		inserted, err := s.Create(ctx, a)
		require.NoError(t, err)
		assert.False(t, inserted)
		assert.Equal(t, 1, testdb.CountRows(t, db, "attempts"))
	})

	t.Run("invalid attempt", func(t *testing.T) {
		_, err := s.Create(ctx, &domain.Attempt{PuzzleID: "x", Result: domain.ResultWin})
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.ErrorIs(t, err, domain.ErrZeroAttemptTime)
	})
}

func TestAttemptStore_Latest(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)
	s := sqlstore.NewAttemptStore(db, nil)

	for _, a := range []*domain.Attempt{
		mustAttempt(t, "p1", "2024-03-02T09:00:00Z", domain.ResultLoss),
		mustAttempt(t, "p1", "2024-03-03T09:00:00Z", domain.ResultWin),
		mustAttempt(t, "p1", "2024-03-01T09:00:00Z", domain.ResultLoss),
		mustAttempt(t, "p2", "2024-03-05T09:00:00Z", domain.ResultLoss),
	} {
		_, err := s.Create(ctx, a)
		require.NoError(t, err)
	}

	latest, err := s.Latest(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", latest.PuzzleID)
	assert.Equal(t, "win", latest.Result)
	assert.Equal(t, "2024-03-03T09:00:00.000Z", latest.AttemptedAt)

	_, err = s.Latest(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrAttemptNotFound)
	assert.True(t, store.IsNotFoundError(err))
}

func TestAttemptStore_LatestKeepsRawTimestamp(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)
	s := sqlstore.NewAttemptStore(db, nil)

	testdb.InsertRawAttempt(t, db, "bad", "not-a-time", "loss")

	latest, err := s.Latest(ctx, "bad")
	require.NoError(t, err)
	assert.Equal(t, "not-a-time", latest.AttemptedAt)
}

func TestAttemptStore_PuzzleIDs(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)
	s := sqlstore.NewAttemptStore(db, nil)

	ids, err := s.PuzzleIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	for _, a := range []*domain.Attempt{
		mustAttempt(t, "zz", "2024-03-01T09:00:00Z", domain.ResultLoss),
		mustAttempt(t, "aa", "2024-03-01T09:00:00Z", domain.ResultLoss),
		mustAttempt(t, "zz", "2024-03-02T09:00:00Z", domain.ResultWin),
	} {
		_, err := s.Create(ctx, a)
		require.NoError(t, err)
	}

	ids, err = s.PuzzleIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"aa", "zz"}, ids)
}

func TestAttemptStore_LatestInstant(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)
	s := sqlstore.NewAttemptStore(db, nil)

	at, err := s.LatestInstant(ctx, domain.SourceLichess)
	require.NoError(t, err)
	assert.True(t, at.IsZero())

	_, err = s.Create(ctx, mustAttempt(t, "p1", "2024-03-01T09:00:00Z", domain.ResultLoss))
	require.NoError(t, err)
	local, err := domain.NewAttempt("p2", ts("2024-04-01T09:00:00Z"), domain.ResultWin, domain.SourceLocal)
	require.NoError(t, err)
	_, err = s.Create(ctx, local)
	require.NoError(t, err)

	at, err = s.LatestInstant(ctx, domain.SourceLichess)
	require.NoError(t, err)
	assert.Equal(t, ts("2024-03-01T09:00:00Z"), at)

	at, err = s.LatestInstant(ctx, domain.SourceLocal)
	require.NoError(t, err)
	assert.Equal(t, ts("2024-04-01T09:00:00Z"), at)
}

func TestAttemptStore_LatestSame(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)
	s := sqlstore.NewAttemptStore(db, nil)

	_, err := s.Create(ctx, mustAttempt(t, "p1", "2024-03-01T09:00:00Z", domain.ResultLoss))
	require.NoError(t, err)
	_, err = s.Create(ctx, mustAttempt(t, "p1", "2024-03-01T09:00:05Z", domain.ResultWin))
	require.NoError(t, err)

	at, err := s.LatestSame(ctx, "p1", domain.ResultLoss)
	require.NoError(t, err)
	assert.Equal(t, ts("2024-03-01T09:00:00Z"), at)

	at, err = s.LatestSame(ctx, "p2", domain.ResultLoss)
	require.NoError(t, err)
	assert.True(t, at.IsZero())
}

func TestAttemptStore_WithTx(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)
	s := sqlstore.NewAttemptStore(db, nil)

	testdb.WithTx(t, db, func(t *testing.T, tx *sqlx.Tx) {
		inserted, err := s.WithTx(tx).Create(ctx, mustAttempt(t, "p1", "2024-03-01T09:00:00Z", domain.ResultLoss))
		require.NoError(t, err)
		assert.True(t, inserted)
	})

	assert.Equal(t, 0, testdb.CountRows(t, db, "attempts"), "rolled back insert must not persist")
}
