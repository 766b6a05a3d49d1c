package catalog

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrContentNotFound indicates a content record was not found
	ErrContentNotFound = errors.New("content not found")

	// ErrUserNotFound indicates a user was not found
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidFileType indicates the uploaded file's MIME type is outside
	// the allow-list for the declared content type
	ErrInvalidFileType = errors.New("invalid file type")

	// ErrInvalidContentType indicates an unknown content type value
	ErrInvalidContentType = errors.New("invalid content type")

	// ErrEmailTaken indicates a registration attempt with an email that is
	// already registered
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials indicates a failed email/password check
	ErrInvalidCredentials = errors.New("incorrect email or password")

	// ErrStreamURLUnavailable indicates the blob store could not produce a
	// presigned URL for an existing object
	ErrStreamURLUnavailable = errors.New("unable to generate presigned URL for streaming")
)

// StorageError represents a failed blob store operation. It wraps the
// underlying transport error so its text survives to the caller without the
// transport's error types crossing the package boundary.
type StorageError struct {
	Op  string // "upload", "delete", "presign"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
