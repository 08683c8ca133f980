package metadata

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/studysync/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL)`)
	require.NoError(t, err)
	return db
}

func TestGetSetDelete(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	v, err := r.Get(ctx, "identity.refresh_token")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, r.Set(ctx, "identity.refresh_token", []byte("one")))
	require.NoError(t, r.Set(ctx, "identity.refresh_token", []byte("two")))

	v, err = r.Get(ctx, "identity.refresh_token")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), v)

	require.NoError(t, r.Delete(ctx, "identity.refresh_token"))
	require.NoError(t, r.Delete(ctx, "identity.refresh_token"))

	v, err = r.Get(ctx, "identity.refresh_token")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestInsideTransaction(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return NewSQLiteRepository(tx).Set(ctx, "k", []byte("v"))
	})
	require.NoError(t, err)

	v, err := NewSQLiteRepository(db).Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}

func TestErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	assert.ErrorContains(t, err, `get metadata "k"`)
	assert.ErrorContains(t, r.Set(ctx, "k", nil), `set metadata "k"`)
	assert.ErrorContains(t, r.Delete(ctx, "k"), `delete metadata "k"`)
}
