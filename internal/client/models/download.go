package models

import "time"

// Download records where a fetched exam document was saved.
type Download struct {
	ID          string
	ExamID      string
	FileName    string
	Destination string // saver kind, e.g. "file" or "s3"
	Location    string // path or object URI
	Size        int64
	ContentType string
	SavedAt     time.Time
}
