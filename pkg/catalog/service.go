package catalog

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Service is the content lifecycle coordinator. It owns the ordering rules
// that keep the repository and the blob store consistent: uploads happen
// before record creation, blob deletion happens before row deletion, and
// cleanup of replaced blobs is best-effort.
type Service interface {
	CreateContent(ctx context.Context, req CreateContentRequest) (*Content, error)
	GetContent(ctx context.Context, id uuid.UUID) (*Content, error)
	ListContent(ctx context.Context, req ListContentRequest) ([]*Content, error)
	UpdateContent(ctx context.Context, req UpdateContentRequest) (*Content, error)
	DeleteContent(ctx context.Context, id uuid.UUID) error

	// StreamURL returns a time-limited playback URL for the stored blob.
	StreamURL(ctx context.Context, id uuid.UUID) (string, error)
}

// AuthService verifies credentials and registers users. Token issuance is
// a transport concern and lives at the HTTP layer.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
}

// Repository provides CRUD over content records. Each call is a single
// atomic operation against the backing store. Reads and writes against a
// missing id return ErrContentNotFound.
type Repository interface {
	CreateContent(ctx context.Context, content *Content) error
	GetContent(ctx context.Context, id uuid.UUID) (*Content, error)
	ListContent(ctx context.Context, offset, limit int) ([]*Content, error)
	UpdateContent(ctx context.Context, content *Content) error
	DeleteContent(ctx context.Context, id uuid.UUID) error
}

// UserRepository provides user persistence. CreateUser returns ErrEmailTaken
// when the email is already registered; GetUserByEmail returns
// ErrUserNotFound for unknown emails.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// UploadParams carries the naming inputs for a blob upload. The object key
// is derived from ContentType, ContentID and FileName's extension.
type UploadParams struct {
	ContentType ContentType
	ContentID   uuid.UUID
	FileName    string
	MimeType    string
}

// BlobStore is the object store gateway. Implementations return a
// fully-qualified, dereferenceable storage URL from Upload and accept that
// URL back for Delete and PresignURL. All failures surface as *StorageError;
// the underlying client's error types never cross this boundary.
type BlobStore interface {
	Upload(ctx context.Context, reader io.Reader, params UploadParams) (string, error)
	Delete(ctx context.Context, storageURL string) error
	PresignURL(ctx context.Context, storageURL string, ttl time.Duration) (string, error)

	// Ping verifies the store is reachable. Used by health checks.
	Ping(ctx context.Context) error
}
