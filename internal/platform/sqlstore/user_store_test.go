package sqlstore_test

import (
	"testing"

	"github.com/phrazzld/tactics-srs/internal/platform/sqlstore"
	"github.com/phrazzld/tactics-srs/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStore_Ensure(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)
	s := sqlstore.NewUserStore(db, nil)

	name, err := s.Username(ctx)
	require.NoError(t, err)
	assert.Equal(t, "me", name, "migration seeds the local user")

	require.NoError(t, s.Ensure(ctx, "magnus"))
	require.NoError(t, s.Ensure(ctx, "magnus"))

	name, err = s.Username(ctx)
	require.NoError(t, err)
	assert.Equal(t, "magnus", name)
	assert.Equal(t, 1, testdb.CountRows(t, db, "users"))
}
