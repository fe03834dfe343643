package selection

import (
	"strings"
	"time"
)

// Config bounds what a viewer may pick.
type Config struct {
	TTL           time.Duration
	MaxPhotoBytes int64
}

// Selection is the photo and meal type the viewer picked for analysis.
type Selection struct {
	PhotoRef  string    `json:"photoRef"`
	Type      string    `json:"type"`
	MimeType  string    `json:"mimeType,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Ready reports whether both the photo and the meal type are present.
func (s Selection) Ready() bool {
	return s.PhotoRef != "" && strings.TrimSpace(s.Type) != ""
}

// HasPhoto reports whether a photo is selected, regardless of the type.
func (s Selection) HasPhoto() bool {
	return s.PhotoRef != ""
}

// ChooseRequest carries the picked image bytes and the meal type label.
type ChooseRequest struct {
	Image    []byte
	MimeType string
	Type     string
}

// Photo is a resolved photo reference.
type Photo struct {
	Data     []byte
	MimeType string
}

// StoredObject captures persisted blob metadata.
type StoredObject struct {
	Key      string
	Size     int64
	MimeType string
	ETag     string
}
