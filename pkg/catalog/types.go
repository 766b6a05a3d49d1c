package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContentType is the domain type for the kind of media a record holds.
type ContentType string

// Content type constants (typed).
const (
	ContentTypeVideo ContentType = "video"
	ContentTypeAudio ContentType = "audio"
)

// allowedMimeTypes is the fixed allow-list of upload MIME types per content type.
var allowedMimeTypes = map[ContentType][]string{
	ContentTypeVideo: {"video/mp4", "video/mpeg"},
	ContentTypeAudio: {"audio/mpeg", "audio/mp3", "audio/wav"},
}

// ParseContentType canonicalizes a client-supplied content type value.
func ParseContentType(s string) (ContentType, bool) {
	ct := ContentType(strings.ToLower(s))
	return ct, ct.IsValid()
}

// IsValid reports whether the content type is a known enum value.
func (t ContentType) IsValid() bool {
	switch t {
	case ContentTypeVideo, ContentTypeAudio:
		return true
	}
	return false
}

// AllowsMime reports whether the given MIME type is acceptable for this
// content type.
func (t ContentType) AllowsMime(mimeType string) bool {
	for _, allowed := range allowedMimeTypes[t] {
		if mimeType == allowed {
			return true
		}
	}
	return false
}

// Content represents one media asset's metadata row. StorageURL is the
// authoritative pointer to the stored blob; once a record is persisted it is
// never empty.
type Content struct {
	ID           uuid.UUID   `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	ContentType  ContentType `json:"content_type"`
	StorageURL   string      `json:"storage_url"`
	ThumbnailURL *string     `json:"thumbnail_url"`
	Duration     int         `json:"duration"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// User is an authenticated principal. The hashed password never leaves the
// repository layer except for verification.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	IsActive       bool      `json:"is_active"`
}
