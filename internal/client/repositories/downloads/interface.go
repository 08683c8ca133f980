package downloads

import (
	"context"

	"github.com/dmitrijs2005/studysync/internal/client/models"
)

// Repository stores Download records.
type Repository interface {
	// Record inserts d, or replaces the record with the same ID.
	Record(ctx context.Context, d *models.Download) error

	// List returns up to limit records, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]*models.Download, error)

	// ListByExam returns the records of one exam, newest first.
	ListByExam(ctx context.Context, examID string) ([]*models.Download, error)

	// ForgetExam removes every record of examID and reports how many were
	// removed. The saved files themselves are left alone.
	ForgetExam(ctx context.Context, examID string) (int64, error)
}
