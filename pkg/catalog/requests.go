package catalog

import (
	"io"

	"github.com/google/uuid"
)

// Request DTOs

// CreateContentRequest contains parameters for creating new content. File is
// the uploaded payload; FileName and MimeType come from the multipart part.
type CreateContentRequest struct {
	Title        string
	Description  string
	ContentType  ContentType
	Duration     int
	ThumbnailURL *string
	FileName     string
	MimeType     string
	File         io.Reader
}

// UpdateContentRequest contains parameters for a partial content update.
// Nil pointer fields are left untouched. A non-nil File replaces the stored
// blob; its MIME type is validated against the record's existing content
// type, which is immutable after creation.
type UpdateContentRequest struct {
	ID           uuid.UUID
	Title        *string
	Description  *string
	Duration     *int
	ThumbnailURL *string
	FileName     string
	MimeType     string
	File         io.Reader
}

// ListContentRequest contains offset/limit pagination for listing content.
type ListContentRequest struct {
	Skip  int
	Limit int
}

// RegisterRequest contains parameters for registering a user.
type RegisterRequest struct {
	Email    string
	Password string
}
