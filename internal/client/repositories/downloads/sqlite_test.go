package downloads

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/studysync/internal/client/models"
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

	_, err = db.Exec(`
CREATE TABLE downloads (
  id           TEXT PRIMARY KEY,
  exam_id      TEXT NOT NULL,
  file_name    TEXT NOT NULL,
  destination  TEXT NOT NULL,
  location     TEXT NOT NULL,
  size_bytes   INTEGER NOT NULL,
  content_type TEXT NOT NULL DEFAULT '',
  saved_at     TIMESTAMP NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func download(id, exam string, at time.Time) *models.Download {
	return &models.Download{
		ID:          id,
		ExamID:      exam,
		FileName:    exam + ".pdf",
		Destination: "file",
		Location:    "/tmp/" + exam + ".pdf",
		Size:        42,
		ContentType: "application/pdf",
		SavedAt:     at,
	}
}

func TestRecordAndList(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, r.Record(ctx, download("d1", "e1", base)))
	require.NoError(t, r.Record(ctx, download("d2", "e2", base.Add(time.Minute))))
	require.NoError(t, r.Record(ctx, download("d3", "e1", base.Add(2*time.Minute))))

	all, err := r.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "d3", all[0].ID)
	assert.Equal(t, "d1", all[2].ID)
	assert.True(t, base.Equal(all[2].SavedAt))
	assert.Equal(t, int64(42), all[2].Size)

	top, err := r.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "d3", top[0].ID)

	e1, err := r.ListByExam(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, e1, 2)
	assert.Equal(t, "d3", e1[0].ID)
}

func TestRecord_UpsertsByID(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	d := download("d1", "e1", now)
	require.NoError(t, r.Record(ctx, d))
	d.Location = "s3://bucket/e1.pdf"
	d.Destination = "s3"
	require.NoError(t, r.Record(ctx, d))

	got, err := r.ListByExam(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s3://bucket/e1.pdf", got[0].Location)
	assert.Equal(t, "s3", got[0].Destination)
}

func TestForgetExam(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, r.Record(ctx, download("d1", "e1", now)))
	require.NoError(t, r.Record(ctx, download("d2", "e1", now)))
	require.NoError(t, r.Record(ctx, download("d3", "e2", now)))

	n, err := r.ForgetExam(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = r.ForgetExam(ctx, "missing")
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := r.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "e2", all[0].ExamID)
}
