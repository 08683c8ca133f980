package repositories

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/studysync/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestInitDatabase_CreatesSchema(t *testing.T) {
	ctx := context.Background()
	repos, err := InitDatabase(ctx, filepath.Join(t.TempDir(), "studysync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	for _, table := range []string{"goose_db_version", "metadata", "downloads"} {
		assert.True(t, tableExists(t, repos.DB, table), table)
	}
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "studysync.db")

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(ctx, db))
	require.NoError(t, RunMigrations(ctx, db))
}

func TestRepositoriesShareDatabase(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "studysync.db")

	repos, err := InitDatabase(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, repos.Metadata.Set(ctx, "k", []byte("v")))
	require.NoError(t, repos.Downloads.Record(ctx, &models.Download{
		ID: "d1", ExamID: "e1", FileName: "e1.pdf", Destination: "file",
		Location: "/tmp/e1.pdf", Size: 1, SavedAt: time.Now(),
	}))
	require.NoError(t, repos.Close())

	// reopening keeps the data
	repos, err = InitDatabase(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	v, err := repos.Metadata.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	list, err := repos.Downloads.ListByExam(ctx, "e1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
