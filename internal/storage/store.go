package storage

import (
	"context"
	"time"
)

// Entry describes one object inside a storage folder.
type Entry struct {
	Name      string
	CreatedAt time.Time
}

// ObjectStore is the narrow contract the pipeline needs from a storage
// backend: put bytes at folder/filename, enumerate a folder, delete an object.
type ObjectStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	List(ctx context.Context, folder string) ([]Entry, error)
	Remove(ctx context.Context, path string) error
	PublicURL(path string) string
}
