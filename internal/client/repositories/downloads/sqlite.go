package downloads

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/studysync/internal/client/models"
	"github.com/dmitrijs2005/studysync/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `id, exam_id, file_name, destination, location, size_bytes, content_type, saved_at`

func (r *SQLiteRepository) Record(ctx context.Context, d *models.Download) error {

	query := `INSERT INTO downloads (` + selectColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET exam_id = excluded.exam_id,
				file_name = excluded.file_name,
				destination = excluded.destination,
				location = excluded.location,
				size_bytes = excluded.size_bytes,
				content_type = excluded.content_type,
				saved_at = excluded.saved_at
	`
	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.ExamID, d.FileName, d.Destination, d.Location, d.Size, d.ContentType, d.SavedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record download: %w", err)
	}

	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]*models.Download, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `SELECT ` + selectColumns + ` FROM downloads ORDER BY saved_at DESC, id LIMIT ?`
	return r.query(ctx, query, limit)
}

func (r *SQLiteRepository) ListByExam(ctx context.Context, examID string) ([]*models.Download, error) {
	query := `SELECT ` + selectColumns + ` FROM downloads WHERE exam_id = ? ORDER BY saved_at DESC, id`
	return r.query(ctx, query, examID)
}

func (r *SQLiteRepository) ForgetExam(ctx context.Context, examID string) (int64, error) {

	result, err := r.db.ExecContext(ctx, `DELETE FROM downloads WHERE exam_id = ?`, examID)
	if err != nil {
		return 0, fmt.Errorf("failed to forget downloads: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]*models.Download, error) {

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error selecting downloads: %w", err)
	}
	defer rows.Close()

	var result []*models.Download

	for rows.Next() {
		item := &models.Download{}
		err := rows.Scan(&item.ID, &item.ExamID, &item.FileName, &item.Destination,
			&item.Location, &item.Size, &item.ContentType, &item.SavedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning download: %w", err)
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
