package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/mediakit/catalog/pkg/catalog"
	repomem "github.com/mediakit/catalog/pkg/catalog/repo/memory"
	storagemem "github.com/mediakit/catalog/pkg/catalog/storage/memory"
)

func setupTestService(t *testing.T) (catalog.Service, *repomem.Repository, *storagemem.Backend) {
	t.Helper()

	repo := repomem.New()
	store := storagemem.New()

	svc, err := catalog.New(
		catalog.WithRepository(repo),
		catalog.WithBlobStore(store),
	)
	require.NoError(t, err)

	return svc, repo, store
}

func videoCreateRequest(title string) catalog.CreateContentRequest {
	return catalog.CreateContentRequest{
		Title:       title,
		Description: "a test video",
		ContentType: catalog.ContentTypeVideo,
		Duration:    120,
		FileName:    "clip.mp4",
		MimeType:    "video/mp4",
		File:        strings.NewReader("video bytes"),
	}
}

func TestNewServiceValidation(t *testing.T) {
	t.Run("missing repository", func(t *testing.T) {
		_, err := catalog.New(catalog.WithBlobStore(storagemem.New()))
		assert.Error(t, err)
	})

	t.Run("missing blob store", func(t *testing.T) {
		_, err := catalog.New(catalog.WithRepository(repomem.New()))
		assert.Error(t, err)
	})
}

func TestCreateContent(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, _, store := setupTestService(t)

		content, err := svc.CreateContent(ctx, videoCreateRequest("Test Video"))
		require.NoError(t, err)
		require.NotNil(t, content)

		assert.NotEqual(t, uuid.Nil, content.ID)
		assert.Equal(t, "Test Video", content.Title)
		assert.Equal(t, catalog.ContentTypeVideo, content.ContentType)
		assert.False(t, content.CreatedAt.IsZero())
		assert.Equal(t, content.CreatedAt, content.UpdatedAt)

		key := catalog.ObjectKey(catalog.ContentTypeVideo, content.ID, "clip.mp4")
		assert.Equal(t, "memory://"+key, content.StorageURL)
		assert.True(t, store.Has(key))
		assert.Equal(t, "video/mp4", store.MimeType(key))

		// record is readable back
		got, err := svc.GetContent(ctx, content.ID)
		require.NoError(t, err)
		assert.Equal(t, content.StorageURL, got.StorageURL)
	})

	t.Run("audio success", func(t *testing.T) {
		svc, _, store := setupTestService(t)

		content, err := svc.CreateContent(ctx, catalog.CreateContentRequest{
			Title:       "Test Audio",
			ContentType: catalog.ContentTypeAudio,
			FileName:    "track.wav",
			MimeType:    "audio/wav",
			File:        strings.NewReader("audio bytes"),
		})
		require.NoError(t, err)

		key := catalog.ObjectKey(catalog.ContentTypeAudio, content.ID, "track.wav")
		assert.True(t, store.Has(key))
	})

	t.Run("invalid content type", func(t *testing.T) {
		svc, _, _ := setupTestService(t)

		req := videoCreateRequest("Bad Type")
		req.ContentType = catalog.ContentType("image")

		_, err := svc.CreateContent(ctx, req)
		assert.ErrorIs(t, err, catalog.ErrInvalidContentType)
	})

	t.Run("mime mismatch uploads nothing", func(t *testing.T) {
		svc, _, store := setupTestService(t)

		req := videoCreateRequest("Mismatched")
		req.MimeType = "audio/mpeg"

		_, err := svc.CreateContent(ctx, req)
		assert.ErrorIs(t, err, catalog.ErrInvalidFileType)

		list, err := svc.ListContent(ctx, catalog.ListContentRequest{})
		require.NoError(t, err)
		assert.Empty(t, list)
		assert.Equal(t, 0, store.UploadCount())
	})

	t.Run("record insert failure rolls back blob", func(t *testing.T) {
		store := storagemem.New()
		repo := &failingRepo{Repository: repomem.New(), failCreate: true}

		svc, err := catalog.New(
			catalog.WithRepository(repo),
			catalog.WithBlobStore(store),
		)
		require.NoError(t, err)

		_, err = svc.CreateContent(ctx, videoCreateRequest("Doomed"))
		assert.Error(t, err)

		// The compensating delete removed the uploaded blob.
		assert.Equal(t, 1, store.UploadCount())
		assert.Equal(t, 0, store.ObjectCount())
	})
}

func TestListContent(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupTestService(t)

	list, err := svc.ListContent(ctx, catalog.ListContentRequest{})
	require.NoError(t, err)
	assert.Empty(t, list)

	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		_, err := svc.CreateContent(ctx, videoCreateRequest(title))
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	t.Run("all", func(t *testing.T) {
		list, err := svc.ListContent(ctx, catalog.ListContentRequest{})
		require.NoError(t, err)
		require.Len(t, list, 3)
		for i, title := range titles {
			assert.Equal(t, title, list[i].Title)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		list, err := svc.ListContent(ctx, catalog.ListContentRequest{Skip: 1, Limit: 1})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "second", list[0].Title)
	})

	t.Run("skip past end", func(t *testing.T) {
		list, err := svc.ListContent(ctx, catalog.ListContentRequest{Skip: 10})
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("negative skip clamped", func(t *testing.T) {
		list, err := svc.ListContent(ctx, catalog.ListContentRequest{Skip: -5, Limit: 2})
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}

func TestUpdateContent(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		svc, _, _ := setupTestService(t)

		_, err := svc.UpdateContent(ctx, catalog.UpdateContentRequest{ID: uuid.New()})
		assert.ErrorIs(t, err, catalog.ErrContentNotFound)
	})

	t.Run("metadata only", func(t *testing.T) {
		svc, _, _ := setupTestService(t)

		created, err := svc.CreateContent(ctx, videoCreateRequest("Original"))
		require.NoError(t, err)

		newTitle := "Renamed"
		emptyDesc := ""
		updated, err := svc.UpdateContent(ctx, catalog.UpdateContentRequest{
			ID:          created.ID,
			Title:       &newTitle,
			Description: &emptyDesc,
		})
		require.NoError(t, err)

		assert.Equal(t, "Renamed", updated.Title)
		// explicit empty string overwrites, unlike an omitted field
		assert.Equal(t, "", updated.Description)
		assert.Equal(t, created.Duration, updated.Duration)
		assert.Equal(t, created.StorageURL, updated.StorageURL)
		assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
	})

	t.Run("replacement file same extension", func(t *testing.T) {
		svc, _, store := setupTestService(t)

		created, err := svc.CreateContent(ctx, videoCreateRequest("Replace Me"))
		require.NoError(t, err)

		updated, err := svc.UpdateContent(ctx, catalog.UpdateContentRequest{
			ID:       created.ID,
			FileName: "newclip.mp4",
			MimeType: "video/mpeg",
			File:     strings.NewReader("new video bytes"),
		})
		require.NoError(t, err)

		// same id and extension, so the key and URL are unchanged
		assert.Equal(t, created.StorageURL, updated.StorageURL)
		key := catalog.ObjectKey(catalog.ContentTypeVideo, created.ID, "newclip.mp4")
		assert.Equal(t, "video/mpeg", store.MimeType(key))
		assert.Equal(t, 1, store.ObjectCount())
	})

	t.Run("replacement file new extension deletes old blob", func(t *testing.T) {
		svc, _, store := setupTestService(t)

		created, err := svc.CreateContent(ctx, catalog.CreateContentRequest{
			Title:       "Track",
			ContentType: catalog.ContentTypeAudio,
			FileName:    "take1.wav",
			MimeType:    "audio/wav",
			File:        strings.NewReader("take one"),
		})
		require.NoError(t, err)

		updated, err := svc.UpdateContent(ctx, catalog.UpdateContentRequest{
			ID:       created.ID,
			FileName: "take2.mp3",
			MimeType: "audio/mpeg",
			File:     strings.NewReader("take two"),
		})
		require.NoError(t, err)

		oldKey := catalog.ObjectKey(catalog.ContentTypeAudio, created.ID, "take1.wav")
		newKey := catalog.ObjectKey(catalog.ContentTypeAudio, created.ID, "take2.mp3")

		assert.NotEqual(t, created.StorageURL, updated.StorageURL)
		assert.False(t, store.Has(oldKey))
		assert.True(t, store.Has(newKey))
	})

	t.Run("replacement file mime mismatch", func(t *testing.T) {
		svc, _, store := setupTestService(t)

		created, err := svc.CreateContent(ctx, videoCreateRequest("Immutable Type"))
		require.NoError(t, err)

		newTitle := "Should Not Apply"
		_, err = svc.UpdateContent(ctx, catalog.UpdateContentRequest{
			ID:       created.ID,
			Title:    &newTitle,
			FileName: "track.mp3",
			MimeType: "audio/mpeg",
			File:     strings.NewReader("wrong kind"),
		})
		assert.ErrorIs(t, err, catalog.ErrInvalidFileType)

		// nothing about the record changed, and nothing was uploaded
		got, err := svc.GetContent(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Immutable Type", got.Title)
		assert.Equal(t, created.StorageURL, got.StorageURL)
		assert.Equal(t, 1, store.UploadCount())
	})

	t.Run("upload failure leaves record untouched", func(t *testing.T) {
		repo := repomem.New()
		inner := storagemem.New()
		store := &failingStore{BlobStore: inner}

		svc, err := catalog.New(
			catalog.WithRepository(repo),
			catalog.WithBlobStore(store),
		)
		require.NoError(t, err)

		created, err := svc.CreateContent(ctx, videoCreateRequest("Stable"))
		require.NoError(t, err)

		store.failUpload = true
		newTitle := "Should Not Apply"
		_, err = svc.UpdateContent(ctx, catalog.UpdateContentRequest{
			ID:       created.ID,
			Title:    &newTitle,
			FileName: "clip2.mp4",
			MimeType: "video/mp4",
			File:     strings.NewReader("newer bytes"),
		})
		assert.Error(t, err)

		got, err := svc.GetContent(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Stable", got.Title)
		assert.Equal(t, created.StorageURL, got.StorageURL)
	})

	t.Run("old blob delete failure is swallowed", func(t *testing.T) {
		repo := repomem.New()
		inner := storagemem.New()
		store := &failingStore{BlobStore: inner}

		svc, err := catalog.New(
			catalog.WithRepository(repo),
			catalog.WithBlobStore(store),
		)
		require.NoError(t, err)

		created, err := svc.CreateContent(ctx, videoCreateRequest("Sticky Blob"))
		require.NoError(t, err)

		store.failDelete = true
		updated, err := svc.UpdateContent(ctx, catalog.UpdateContentRequest{
			ID:       created.ID,
			FileName: "clip.mpeg",
			MimeType: "video/mpeg",
			File:     strings.NewReader("replacement"),
		})
		require.NoError(t, err)
		assert.NotEqual(t, created.StorageURL, updated.StorageURL)

		// the old blob survives the failed cleanup
		oldKey := catalog.ObjectKey(catalog.ContentTypeVideo, created.ID, "clip.mp4")
		assert.True(t, inner.Has(oldKey))
	})
}

func TestDeleteContent(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, _, store := setupTestService(t)

		created, err := svc.CreateContent(ctx, videoCreateRequest("Short Lived"))
		require.NoError(t, err)

		require.NoError(t, svc.DeleteContent(ctx, created.ID))

		key := catalog.ObjectKey(catalog.ContentTypeVideo, created.ID, "clip.mp4")
		assert.False(t, store.Has(key))

		_, err = svc.GetContent(ctx, created.ID)
		assert.ErrorIs(t, err, catalog.ErrContentNotFound)

		// second delete of the same id
		err = svc.DeleteContent(ctx, created.ID)
		assert.ErrorIs(t, err, catalog.ErrContentNotFound)
	})

	t.Run("not found", func(t *testing.T) {
		svc, _, _ := setupTestService(t)

		err := svc.DeleteContent(ctx, uuid.New())
		assert.ErrorIs(t, err, catalog.ErrContentNotFound)
	})

	t.Run("blob delete failure keeps record", func(t *testing.T) {
		repo := repomem.New()
		inner := storagemem.New()
		store := &failingStore{BlobStore: inner}

		svc, err := catalog.New(
			catalog.WithRepository(repo),
			catalog.WithBlobStore(store),
		)
		require.NoError(t, err)

		created, err := svc.CreateContent(ctx, videoCreateRequest("Undeletable"))
		require.NoError(t, err)

		store.failDelete = true
		err = svc.DeleteContent(ctx, created.ID)
		require.Error(t, err)

		var storageErr *catalog.StorageError
		assert.ErrorAs(t, err, &storageErr)

		// the row is intact and still points at an existing blob
		got, err := svc.GetContent(ctx, created.ID)
		require.NoError(t, err)
		key := catalog.ObjectKey(catalog.ContentTypeVideo, created.ID, "clip.mp4")
		assert.True(t, inner.Has(key))
		assert.Equal(t, created.StorageURL, got.StorageURL)
	})
}

func TestStreamURL(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, _, _ := setupTestService(t)

		created, err := svc.CreateContent(ctx, videoCreateRequest("Streamable"))
		require.NoError(t, err)

		url, err := svc.StreamURL(ctx, created.ID)
		require.NoError(t, err)

		key := catalog.ObjectKey(catalog.ContentTypeVideo, created.ID, "clip.mp4")
		assert.Equal(t, fmt.Sprintf("https://signed.memory.invalid/%s?expires=3600", key), url)
	})

	t.Run("custom ttl", func(t *testing.T) {
		repo := repomem.New()
		store := storagemem.New()

		svc, err := catalog.New(
			catalog.WithRepository(repo),
			catalog.WithBlobStore(store),
			catalog.WithPresignTTL(90*time.Second),
		)
		require.NoError(t, err)

		created, err := svc.CreateContent(ctx, videoCreateRequest("Short Link"))
		require.NoError(t, err)

		url, err := svc.StreamURL(ctx, created.ID)
		require.NoError(t, err)
		assert.Contains(t, url, "expires=90")
	})

	t.Run("not found", func(t *testing.T) {
		svc, _, _ := setupTestService(t)

		_, err := svc.StreamURL(ctx, uuid.New())
		assert.ErrorIs(t, err, catalog.ErrContentNotFound)
	})

	t.Run("presign failure", func(t *testing.T) {
		repo := repomem.New()
		store := &failingStore{BlobStore: storagemem.New()}

		svc, err := catalog.New(
			catalog.WithRepository(repo),
			catalog.WithBlobStore(store),
		)
		require.NoError(t, err)

		created, err := svc.CreateContent(ctx, videoCreateRequest("Unsignable"))
		require.NoError(t, err)

		store.failPresign = true
		_, err = svc.StreamURL(ctx, created.ID)
		assert.ErrorIs(t, err, catalog.ErrStreamURLUnavailable)
		assert.NotErrorIs(t, err, catalog.ErrContentNotFound)
	})
}

// failingRepo wraps the in-memory repository and fails selected operations.
type failingRepo struct {
	*repomem.Repository
	failCreate bool
}

func (r *failingRepo) CreateContent(ctx context.Context, content *catalog.Content) error {
	if r.failCreate {
		return errors.New("insert failed")
	}
	return r.Repository.CreateContent(ctx, content)
}

// failingStore wraps a blob store and fails selected operations.
type failingStore struct {
	catalog.BlobStore
	failUpload  bool
	failDelete  bool
	failPresign bool
}

func (s *failingStore) Upload(ctx context.Context, reader io.Reader, params catalog.UploadParams) (string, error) {
	if s.failUpload {
		return "", &catalog.StorageError{Op: "upload", Key: "unreachable", Err: errors.New("backend unavailable")}
	}
	return s.BlobStore.Upload(ctx, reader, params)
}

func (s *failingStore) Delete(ctx context.Context, storageURL string) error {
	if s.failDelete {
		return &catalog.StorageError{Op: "delete", Key: storageURL, Err: errors.New("backend unavailable")}
	}
	return s.BlobStore.Delete(ctx, storageURL)
}

func (s *failingStore) PresignURL(ctx context.Context, storageURL string, ttl time.Duration) (string, error) {
	if s.failPresign {
		return "", &catalog.StorageError{Op: "presign", Key: storageURL, Err: errors.New("backend unavailable")}
	}
	return s.BlobStore.PresignURL(ctx, storageURL, ttl)
}
