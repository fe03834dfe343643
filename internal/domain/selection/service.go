package selection

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/foodeat/pkg/errors"
)

// Service owns the viewer's photo selection.
type Service interface {
	Reader
	Choose(ctx context.Context, viewerID string, req ChooseRequest) (Selection, error)
	Photo(ctx context.Context, viewerID string) (Photo, error)
	Clear(ctx context.Context, viewerID string) error
}

type service struct {
	cfg      Config
	store    Store
	storage  ObjectStorage
	resolver *Resolver
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a Service instance.
func NewService(cfg Config, store Store, storage ObjectStorage, logger *slog.Logger) Service {
	return &service{
		cfg:      cfg,
		store:    store,
		storage:  storage,
		resolver: NewResolver(storage, cfg),
		logger:   logger.With("component", "selection.service"),
		now:      time.Now,
	}
}

func (s *service) Current(ctx context.Context, viewerID string) (Selection, error) {
	if viewerID == "" {
		return Selection{}, nil
	}
	sel, found, err := s.store.Get(ctx, viewerID)
	if err != nil {
		return Selection{}, apperrors.Wrap("storage_error", "failed to load selection", err)
	}
	if !found {
		return Selection{}, nil
	}
	return sel, nil
}

func (s *service) Choose(ctx context.Context, viewerID string, req ChooseRequest) (Selection, error) {
	if viewerID == "" {
		return Selection{}, apperrors.Wrap("unauthorized", "viewer is required", nil)
	}
	mealType := strings.TrimSpace(req.Type)
	if mealType == "" {
		return Selection{}, apperrors.Wrap("invalid_input", "meal type cannot be empty", nil)
	}
	if len(req.Image) == 0 {
		return Selection{}, apperrors.Wrap("invalid_input", "image cannot be empty", nil)
	}
	if s.cfg.MaxPhotoBytes > 0 && int64(len(req.Image)) > s.cfg.MaxPhotoBytes {
		return Selection{}, apperrors.Wrap("payload_too_large", "image exceeds size limit", nil)
	}
	mimeType := strings.TrimSpace(req.MimeType)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = sniffMime(req.Image)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return Selection{}, apperrors.Wrap("invalid_input", "file is not an image", nil)
	}

	previous, _, err := s.store.Get(ctx, viewerID)
	if err != nil {
		return Selection{}, apperrors.Wrap("storage_error", "failed to load selection", err)
	}

	key := "photos/" + viewerID + "/" + uuid.NewString()
	if _, err := s.storage.Put(ctx, key, req.Image, mimeType); err != nil {
		return Selection{}, apperrors.Wrap("storage_error", "failed to store photo", err)
	}
	sel := Selection{
		PhotoRef:  BlobRef(key),
		Type:      mealType,
		MimeType:  mimeType,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.store.Save(ctx, viewerID, sel, s.cfg.TTL); err != nil {
		_ = s.storage.Delete(ctx, key)
		return Selection{}, apperrors.Wrap("storage_error", "failed to save selection", err)
	}
	s.dropBlob(ctx, previous.PhotoRef)
	s.logger.Info("photo selected", "viewer", viewerID, "type", mealType, "bytes", len(req.Image))
	return sel, nil
}

func (s *service) Photo(ctx context.Context, viewerID string) (Photo, error) {
	sel, err := s.Current(ctx, viewerID)
	if err != nil {
		return Photo{}, err
	}
	if !sel.HasPhoto() {
		return Photo{}, apperrors.Wrap("not_found", "no photo selected", nil)
	}
	photo, err := s.resolver.Resolve(ctx, sel.PhotoRef)
	if err != nil {
		return Photo{}, err
	}
	if sel.MimeType != "" {
		photo.MimeType = sel.MimeType
	}
	return photo, nil
}

func (s *service) Clear(ctx context.Context, viewerID string) error {
	if viewerID == "" {
		return nil
	}
	sel, found, err := s.store.Get(ctx, viewerID)
	if err != nil {
		return apperrors.Wrap("storage_error", "failed to load selection", err)
	}
	if err := s.store.Delete(ctx, viewerID); err != nil {
		return apperrors.Wrap("storage_error", "failed to clear selection", err)
	}
	if found {
		s.dropBlob(ctx, sel.PhotoRef)
	}
	return nil
}

func (s *service) dropBlob(ctx context.Context, ref string) {
	if !strings.HasPrefix(ref, blobScheme) {
		return
	}
	if err := s.storage.Delete(ctx, strings.TrimPrefix(ref, blobScheme)); err != nil {
		s.logger.Warn("failed to delete stale photo", "ref", ref, "error", err)
	}
}

func sniffMime(data []byte) string {
	return http.DetectContentType(data)
}
