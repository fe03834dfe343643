package selection

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	apperrors "github.com/yanqian/foodeat/pkg/errors"
)

const (
	blobScheme = "blob:"
	dataScheme = "data:"
)

// Resolver turns a photo reference into binary image data.
type Resolver struct {
	storage  ObjectStorage
	maxBytes int64
}

// NewResolver constructs a Resolver. maxBytes <= 0 disables the size bound.
func NewResolver(storage ObjectStorage, cfg Config) *Resolver {
	return &Resolver{storage: storage, maxBytes: cfg.MaxPhotoBytes}
}

// BlobRef builds the reference stored for an object key.
func BlobRef(key string) string {
	return blobScheme + key
}

// Resolve reads blob: references from object storage and decodes data: URIs inline.
func (r *Resolver) Resolve(ctx context.Context, ref string) (Photo, error) {
	switch {
	case strings.HasPrefix(ref, blobScheme):
		return r.resolveBlob(ctx, strings.TrimPrefix(ref, blobScheme))
	case strings.HasPrefix(ref, dataScheme):
		return decodeDataURI(ref)
	default:
		return Photo{}, apperrors.Wrap("invalid_input", "unsupported photo reference", nil)
	}
}

func (r *Resolver) resolveBlob(ctx context.Context, key string) (Photo, error) {
	if key == "" {
		return Photo{}, apperrors.Wrap("invalid_input", "photo reference has no key", nil)
	}
	rc, err := r.storage.Get(ctx, key)
	if err != nil {
		return Photo{}, apperrors.Wrap("not_found", "photo not found", err)
	}
	defer rc.Close()

	var reader io.Reader = rc
	if r.maxBytes > 0 {
		reader = io.LimitReader(rc, r.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return Photo{}, apperrors.Wrap("storage_error", "failed to read photo", err)
	}
	if r.maxBytes > 0 && int64(len(data)) > r.maxBytes {
		return Photo{}, apperrors.Wrap("invalid_input", "photo exceeds size limit", nil)
	}
	return Photo{Data: data, MimeType: sniffMime(data)}, nil
}

// decodeDataURI accepts data:<mime>;base64,<payload>.
func decodeDataURI(ref string) (Photo, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(ref, dataScheme), ",")
	if !ok {
		return Photo{}, apperrors.Wrap("invalid_input", "malformed data uri", nil)
	}
	mimeType, encoding, _ := strings.Cut(header, ";")
	if encoding != "base64" {
		return Photo{}, apperrors.Wrap("invalid_input", fmt.Sprintf("unsupported data uri encoding %q", encoding), nil)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Photo{}, apperrors.Wrap("invalid_input", "malformed data uri payload", err)
	}
	if mimeType == "" {
		mimeType = sniffMime(data)
	}
	return Photo{Data: data, MimeType: mimeType}, nil
}
