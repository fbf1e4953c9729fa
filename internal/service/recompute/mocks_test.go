package recompute

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tactics-srs/internal/domain"
	"github.com/phrazzld/tactics-srs/internal/store"
	"github.com/stretchr/testify/mock"
)

type mockAttemptStore struct {
	mock.Mock
}

func (m *mockAttemptStore) Create(ctx context.Context, a *domain.Attempt) (bool, error) {
	args := m.Called(ctx, a)
	return args.Bool(0), args.Error(1)
}

func (m *mockAttemptStore) Latest(ctx context.Context, puzzleID string) (*store.LatestAttempt, error) {
	args := m.Called(ctx, puzzleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.LatestAttempt), args.Error(1)
}

func (m *mockAttemptStore) PuzzleIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockAttemptStore) LatestInstant(ctx context.Context, source string) (time.Time, error) {
	args := m.Called(ctx, source)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *mockAttemptStore) LatestSame(ctx context.Context, puzzleID string, result domain.Result) (time.Time, error) {
	args := m.Called(ctx, puzzleID, result)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *mockAttemptStore) WithTx(tx *sqlx.Tx) store.AttemptStore {
	return m
}

type mockScheduleStore struct {
	mock.Mock
}

func (m *mockScheduleStore) Get(ctx context.Context, puzzleID string) (*domain.ScheduleEntry, error) {
	args := m.Called(ctx, puzzleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduleEntry), args.Error(1)
}

func (m *mockScheduleStore) GetForUpdate(ctx context.Context, puzzleID string) (*domain.ScheduleEntry, error) {
	args := m.Called(ctx, puzzleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduleEntry), args.Error(1)
}

func (m *mockScheduleStore) Upsert(ctx context.Context, e *domain.ScheduleEntry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockScheduleStore) Delete(ctx context.Context, puzzleID string) error {
	return m.Called(ctx, puzzleID).Error(0)
}

func (m *mockScheduleStore) Due(ctx context.Context, f store.DueFilter) ([]store.DueItem, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]store.DueItem), args.Error(1)
}

func (m *mockScheduleStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockScheduleStore) WithTx(tx *sqlx.Tx) store.ScheduleStore {
	return m
}

// directTransactor runs the body without a database, counting calls.
type directTransactor struct {
	attempts store.AttemptStore
	schedule store.ScheduleStore
	calls    int
}

func (d *directTransactor) WithinTx(ctx context.Context, fn TxFn) error {
	d.calls++
	return fn(ctx, d.attempts, d.schedule)
}
