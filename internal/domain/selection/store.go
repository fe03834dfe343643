package selection

import (
	"context"
	"io"
	"time"
)

// Store keeps one selection per viewer.
type Store interface {
	Get(ctx context.Context, viewerID string) (Selection, bool, error)
	Save(ctx context.Context, viewerID string, sel Selection, ttl time.Duration) error
	Delete(ctx context.Context, viewerID string) error
}

// ObjectStorage abstracts blob storage for photo bytes.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) (StoredObject, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// Reader is the read-only view of the selection used by analysis.
type Reader interface {
	Current(ctx context.Context, viewerID string) (Selection, error)
}
