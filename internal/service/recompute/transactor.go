package recompute

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tactics-srs/internal/store"
)

// TxFn is the body of a per-puzzle transaction. The stores it receives are
// bound to the transaction.
type TxFn func(ctx context.Context, attempts store.AttemptStore, schedule store.ScheduleStore) error

// Transactor runs a TxFn atomically.
type Transactor interface {
	WithinTx(ctx context.Context, fn TxFn) error
}

type sqlTransactor struct {
	db       *sqlx.DB
	attempts store.AttemptStore
	schedule store.ScheduleStore
}

// NewSQLTransactor returns a Transactor that opens a database transaction
// on db and hands fn transaction-bound copies of the given stores.
func NewSQLTransactor(db *sqlx.DB, attempts store.AttemptStore, schedule store.ScheduleStore) Transactor {
	if db == nil {
		panic("db cannot be nil")
	}
	return &sqlTransactor{db: db, attempts: attempts, schedule: schedule}
}

func (t *sqlTransactor) WithinTx(ctx context.Context, fn TxFn) error {
	return store.RunInTransaction(ctx, t.db, func(ctx context.Context, tx *sqlx.Tx) error {
		return fn(ctx, t.attempts.WithTx(tx), t.schedule.WithTx(tx))
	})
}
