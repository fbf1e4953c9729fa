package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tactics-srs/internal/store"
	"github.com/phrazzld/tactics-srs/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertUser(ctx context.Context, tx *sqlx.Tx, id int, name string) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO users (id, username) VALUES (?, ?)`), id, name)
	return err
}

func TestRunInTransaction_Success(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)

	err := store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sqlx.Tx) error {
		return insertUser(ctx, tx, 2, "second")
	})
	require.NoError(t, err)
	assert.Equal(t, 2, testdb.CountRows(t, db, "users"))
}

func TestRunInTransaction_FunctionError(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)

	expectedErr := errors.New("function failed")
	err := store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := insertUser(ctx, tx, 2, "second"); err != nil {
			return err
		}
		return expectedErr
	})
	assert.Equal(t, expectedErr, err)
	assert.Equal(t, 1, testdb.CountRows(t, db, "users"), "insert must be rolled back")
}

func TestRunInTransaction_Panic(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)

	assert.PanicsWithValue(t, "boom", func() {
		_ = store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sqlx.Tx) error {
			if err := insertUser(ctx, tx, 2, "second"); err != nil {
				return err
			}
			panic("boom")
		})
	})
	assert.Equal(t, 1, testdb.CountRows(t, db, "users"))
}

func TestRunInTransaction_BeginFails(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)
	require.NoError(t, db.Close())

	err := store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sqlx.Tx) error {
		t.Fatal("fn must not run")
		return nil
	})
	assert.ErrorIs(t, err, store.ErrTransactionFailed)
}
