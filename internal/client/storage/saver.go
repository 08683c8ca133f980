package storage

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/studysync/internal/filex"
)

// Saver stores one document and returns where it ended up.
type Saver interface {
	// Kind names the destination, e.g. "file" or "s3".
	Kind() string
	Save(ctx context.Context, name, contentType string, data []byte) (location string, err error)
}

// FileSaver writes documents into a directory, never overwriting an existing
// file.
type FileSaver struct {
	dir string
}

// NewFileSaver creates dir if needed.
func NewFileSaver(dir string) (*FileSaver, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, fmt.Errorf("download dir: %w", err)
	}
	return &FileSaver{dir: abs}, nil
}

func (s *FileSaver) Kind() string { return "file" }

// Dir returns the absolute target directory.
func (s *FileSaver) Dir() string { return s.dir }

func (s *FileSaver) Save(ctx context.Context, name, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filex.UniquePath(s.dir, name)
	if err := filex.WriteFileAtomic(path, data, 0o600); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	return path, nil
}

var _ Saver = (*FileSaver)(nil)
