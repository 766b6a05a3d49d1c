package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DefaultPresignTTL is how long generated streaming URLs stay valid.
const DefaultPresignTTL = 3600 * time.Second

// service implements the Service interface.
//
// Per-record consistency relies on operation ordering, not locking:
// concurrent operations on the same content id can race, and that race is
// accepted. There are no automatic retries; a failed attempt is final for
// that request.
type service struct {
	repo       Repository
	store      BlobStore
	presignTTL time.Duration
	logger     *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the content repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repo = repo
	}
}

// WithBlobStore sets the blob storage backend for the service
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.store = store
	}
}

// WithPresignTTL overrides the default streaming URL lifetime
func WithPresignTTL(ttl time.Duration) Option {
	return func(s *service) {
		if ttl > 0 {
			s.presignTTL = ttl
		}
	}
}

// WithLogger sets the logger for the service
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new lifecycle service with the given options.
func New(options ...Option) (Service, error) {
	s := &service{
		presignTTL: DefaultPresignTTL,
		logger:     slog.Default(),
	}

	for _, option := range options {
		option(s)
	}

	if s.repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.store == nil {
		return nil, fmt.Errorf("blob store is required")
	}

	return s, nil
}

// CreateContent uploads the payload first and creates the record only after
// the upload succeeds, so no persisted record ever points at a missing blob.
// If the record insert fails after a successful upload, the blob is deleted
// best-effort; either way the create fails.
func (s *service) CreateContent(ctx context.Context, req CreateContentRequest) (*Content, error) {
	if !req.ContentType.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidContentType, req.ContentType)
	}
	if !req.ContentType.AllowsMime(req.MimeType) {
		return nil, fmt.Errorf("%w for %s content: %s", ErrInvalidFileType, req.ContentType, req.MimeType)
	}

	id := uuid.New()

	storageURL, err := s.store.Upload(ctx, req.File, UploadParams{
		ContentType: req.ContentType,
		ContentID:   id,
		FileName:    req.FileName,
		MimeType:    req.MimeType,
	})
	if err != nil {
		s.logger.Error("blob upload failed", "content_id", id, "error", err)
		return nil, err
	}

	now := time.Now().UTC()
	content := &Content{
		ID:           id,
		Title:        req.Title,
		Description:  req.Description,
		ContentType:  req.ContentType,
		StorageURL:   storageURL,
		ThumbnailURL: req.ThumbnailURL,
		Duration:     req.Duration,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateContent(ctx, content); err != nil {
		// The blob is already durable; remove it so the failed create leaves
		// nothing behind. If the removal fails too, the orphan is logged and
		// stays until swept out of band.
		if delErr := s.store.Delete(ctx, storageURL); delErr != nil {
			s.logger.Error("orphaned blob left after failed record create",
				"content_id", id, "storage_url", storageURL, "error", delErr)
		} else {
			s.logger.Warn("rolled back uploaded blob after failed record create",
				"content_id", id, "storage_url", storageURL)
		}
		return nil, err
	}

	s.logger.Info("content created", "content_id", id, "storage_url", storageURL)
	return content, nil
}

func (s *service) GetContent(ctx context.Context, id uuid.UUID) (*Content, error) {
	return s.repo.GetContent(ctx, id)
}

func (s *service) ListContent(ctx context.Context, req ListContentRequest) ([]*Content, error) {
	skip := req.Skip
	if skip < 0 {
		skip = 0
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 100
	}
	return s.repo.ListContent(ctx, skip, limit)
}

// UpdateContent applies a partial update. When a replacement file is
// supplied it is validated against the record's existing content type and
// uploaded under the same id before any metadata is touched; an upload
// failure leaves the record in its prior state. Deleting the replaced blob
// is cleanup of an already-superseded object, so a failure there is logged
// and swallowed rather than failing the update.
func (s *service) UpdateContent(ctx context.Context, req UpdateContentRequest) (*Content, error) {
	content, err := s.repo.GetContent(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.File != nil {
		if !content.ContentType.AllowsMime(req.MimeType) {
			return nil, fmt.Errorf("%w for %s content: %s", ErrInvalidFileType, content.ContentType, req.MimeType)
		}

		newURL, err := s.store.Upload(ctx, req.File, UploadParams{
			ContentType: content.ContentType,
			ContentID:   content.ID,
			FileName:    req.FileName,
			MimeType:    req.MimeType,
		})
		if err != nil {
			s.logger.Error("replacement blob upload failed", "content_id", content.ID, "error", err)
			return nil, err
		}

		// Same id, so the key only changes when the extension does.
		if newURL != content.StorageURL {
			if delErr := s.store.Delete(ctx, content.StorageURL); delErr != nil {
				s.logger.Warn("failed to delete replaced blob",
					"content_id", content.ID, "storage_url", content.StorageURL, "error", delErr)
			}
		}
		content.StorageURL = newURL
	}

	if req.Title != nil {
		content.Title = *req.Title
	}
	if req.Description != nil {
		content.Description = *req.Description
	}
	if req.Duration != nil {
		content.Duration = *req.Duration
	}
	if req.ThumbnailURL != nil {
		content.ThumbnailURL = req.ThumbnailURL
	}
	content.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateContent(ctx, content); err != nil {
		return nil, err
	}

	s.logger.Info("content updated", "content_id", content.ID)
	return content, nil
}

// DeleteContent removes the blob before the row. If the blob deletion fails
// the whole delete fails with the row intact, which keeps the record's
// storage_url pointing at an existing object. Deleting the row first would
// risk an unreferenced blob that nothing would ever clean up.
func (s *service) DeleteContent(ctx context.Context, id uuid.UUID) error {
	content, err := s.repo.GetContent(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, content.StorageURL); err != nil {
		s.logger.Error("blob delete failed, aborting content delete",
			"content_id", id, "storage_url", content.StorageURL, "error", err)
		return err
	}

	if err := s.repo.DeleteContent(ctx, id); err != nil {
		return err
	}

	s.logger.Info("content deleted", "content_id", id)
	return nil
}

// StreamURL produces a presigned playback URL for the stored blob. A
// presign failure for an existing record is a server-side fault, distinct
// from not-found.
func (s *service) StreamURL(ctx context.Context, id uuid.UUID) (string, error) {
	content, err := s.repo.GetContent(ctx, id)
	if err != nil {
		return "", err
	}

	url, err := s.store.PresignURL(ctx, content.StorageURL, s.presignTTL)
	if err != nil {
		s.logger.Error("presigned URL generation failed",
			"content_id", id, "storage_url", content.StorageURL, "error", err)
		return "", fmt.Errorf("%w: %v", ErrStreamURLUnavailable, err)
	}

	return url, nil
}
