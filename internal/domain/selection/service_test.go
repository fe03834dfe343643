package selection

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/foodeat/pkg/errors"
)

var jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00fake-jpeg-body")

func TestService_ChooseStoresBlobAndSelection(t *testing.T) {
	store := newStubStore()
	blobs := newStubStorage()
	svc := newTestService(Config{TTL: time.Hour, MaxPhotoBytes: 1 << 20}, store, blobs)

	sel, err := svc.Choose(context.Background(), "viewer-1", ChooseRequest{Image: jpegBytes, Type: " 아침 "})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(sel.PhotoRef, "blob:photos/viewer-1/"))
	require.Equal(t, "아침", sel.Type)
	require.Equal(t, "image/jpeg", sel.MimeType)
	require.True(t, sel.Ready())
	require.Equal(t, time.Hour, store.lastTTL)

	current, err := svc.Current(context.Background(), "viewer-1")
	require.NoError(t, err)
	require.Equal(t, sel, current)

	photo, err := svc.Photo(context.Background(), "viewer-1")
	require.NoError(t, err)
	require.Equal(t, jpegBytes, photo.Data)
	require.Equal(t, "image/jpeg", photo.MimeType)
}

func TestService_ChooseReplacesPreviousBlob(t *testing.T) {
	blobs := newStubStorage()
	svc := newTestService(Config{MaxPhotoBytes: 1 << 20}, newStubStore(), blobs)

	first, err := svc.Choose(context.Background(), "viewer-1", ChooseRequest{Image: jpegBytes, Type: "점심"})
	require.NoError(t, err)
	second, err := svc.Choose(context.Background(), "viewer-1", ChooseRequest{Image: jpegBytes, Type: "점심"})
	require.NoError(t, err)
	require.NotEqual(t, first.PhotoRef, second.PhotoRef)
	require.Len(t, blobs.blobs, 1)
}

func TestService_ChooseValidation(t *testing.T) {
	svc := newTestService(Config{MaxPhotoBytes: 16}, newStubStore(), newStubStorage())

	cases := []struct {
		name string
		req  ChooseRequest
		code string
	}{
		{name: "blank type", req: ChooseRequest{Image: jpegBytes[:8], Type: "  "}, code: "invalid_input"},
		{name: "empty image", req: ChooseRequest{Type: "저녁"}, code: "invalid_input"},
		{name: "not an image", req: ChooseRequest{Image: []byte("hello"), Type: "저녁"}, code: "invalid_input"},
		{name: "too large", req: ChooseRequest{Image: jpegBytes, Type: "저녁"}, code: "payload_too_large"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Choose(context.Background(), "viewer-1", tc.req)
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, tc.code), err.Error())
		})
	}
}

func TestService_CurrentMissingIsEmpty(t *testing.T) {
	svc := newTestService(Config{}, newStubStore(), newStubStorage())
	sel, err := svc.Current(context.Background(), "nobody")
	require.NoError(t, err)
	require.False(t, sel.Ready())
	require.False(t, sel.HasPhoto())

	_, err = svc.Photo(context.Background(), "nobody")
	require.True(t, apperrors.IsCode(err, "not_found"))
}

func TestService_CurrentStoreFailure(t *testing.T) {
	store := newStubStore()
	store.getErr = errors.New("valkey down")
	svc := newTestService(Config{}, store, newStubStorage())

	_, err := svc.Current(context.Background(), "viewer-1")
	require.True(t, apperrors.IsCode(err, "storage_error"))
}

func TestService_Clear(t *testing.T) {
	store := newStubStore()
	blobs := newStubStorage()
	svc := newTestService(Config{}, store, blobs)

	_, err := svc.Choose(context.Background(), "viewer-1", ChooseRequest{Image: jpegBytes, Type: "간식"})
	require.NoError(t, err)
	require.NoError(t, svc.Clear(context.Background(), "viewer-1"))
	require.Empty(t, store.items)
	require.Empty(t, blobs.blobs)
}

func TestResolver(t *testing.T) {
	blobs := newStubStorage()
	_, err := blobs.Put(context.Background(), "abc", jpegBytes, "image/jpeg")
	require.NoError(t, err)
	resolver := NewResolver(blobs, Config{})

	photo, err := resolver.Resolve(context.Background(), "blob:abc")
	require.NoError(t, err)
	require.Equal(t, jpegBytes, photo.Data)

	_, err = resolver.Resolve(context.Background(), "blob:missing")
	require.True(t, apperrors.IsCode(err, "not_found"))

	inline := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	photo, err = resolver.Resolve(context.Background(), inline)
	require.NoError(t, err)
	require.Equal(t, []byte("png-bytes"), photo.Data)
	require.Equal(t, "image/png", photo.MimeType)

	_, err = resolver.Resolve(context.Background(), "data:image/png,raw")
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	_, err = resolver.Resolve(context.Background(), "https://example.com/a.jpg")
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestResolverSizeBound(t *testing.T) {
	blobs := newStubStorage()
	_, err := blobs.Put(context.Background(), "big", jpegBytes, "image/jpeg")
	require.NoError(t, err)

	_, err = NewResolver(blobs, Config{MaxPhotoBytes: 4}).Resolve(context.Background(), "blob:big")
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func newTestService(cfg Config, store Store, storage ObjectStorage) *service {
	return NewService(cfg, store, storage, slog.New(slog.NewTextHandler(io.Discard, nil))).(*service)
}

type stubStore struct {
	mu      sync.Mutex
	items   map[string]Selection
	lastTTL time.Duration
	getErr  error
}

func newStubStore() *stubStore {
	return &stubStore{items: make(map[string]Selection)}
}

func (s *stubStore) Get(_ context.Context, viewerID string) (Selection, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return Selection{}, false, s.getErr
	}
	sel, ok := s.items[viewerID]
	return sel, ok, nil
}

func (s *stubStore) Save(_ context.Context, viewerID string, sel Selection, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[viewerID] = sel
	s.lastTTL = ttl
	return nil
}

func (s *stubStore) Delete(_ context.Context, viewerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, viewerID)
	return nil
}

type stubStorage struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newStubStorage() *stubStorage {
	return &stubStorage{blobs: make(map[string][]byte)}
}

func (s *stubStorage) Put(_ context.Context, key string, data []byte, mimeType string) (StoredObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), data...)
	return StoredObject{Key: key, Size: int64(len(data)), MimeType: mimeType}, nil
}

func (s *stubStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, errors.New("blob not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *stubStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}
