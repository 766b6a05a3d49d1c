// Package memory provides an in-memory blob store, used for tests and for
// running the service without S3.
package memory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mediakit/catalog/pkg/catalog"
)

const urlScheme = "memory://"

// Backend is an in-memory implementation of the catalog.BlobStore interface.
// Storage URLs take the form memory://{key}; presigned URLs are synthesized
// deterministically so tests can assert redirect targets.
type Backend struct {
	mu        sync.RWMutex
	objects   map[string][]byte
	mimeTypes map[string]string
	uploads   int
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects:   make(map[string][]byte),
		mimeTypes: make(map[string]string),
	}
}

func (b *Backend) Upload(ctx context.Context, reader io.Reader, params catalog.UploadParams) (string, error) {
	key := catalog.ObjectKey(params.ContentType, params.ContentID, params.FileName)

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", &catalog.StorageError{Op: "upload", Key: key, Err: err}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[key] = data
	b.mimeTypes[key] = params.MimeType
	b.uploads++

	return urlScheme + key, nil
}

func (b *Backend) Delete(ctx context.Context, storageURL string) error {
	key := keyFromURL(storageURL)

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[key]; !exists {
		return &catalog.StorageError{Op: "delete", Key: key, Err: errors.New("object not found")}
	}

	delete(b.objects, key)
	delete(b.mimeTypes, key)
	return nil
}

func (b *Backend) PresignURL(ctx context.Context, storageURL string, ttl time.Duration) (string, error) {
	key := keyFromURL(storageURL)

	b.mu.RLock()
	defer b.mu.RUnlock()

	if _, exists := b.objects[key]; !exists {
		return "", &catalog.StorageError{Op: "presign", Key: key, Err: errors.New("object not found")}
	}

	return fmt.Sprintf("https://signed.memory.invalid/%s?expires=%d", key, int(ttl.Seconds())), nil
}

func (b *Backend) Ping(ctx context.Context) error {
	return nil
}

// Has reports whether a blob exists at the given object key. Test helper.
func (b *Backend) Has(key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, exists := b.objects[key]
	return exists
}

// MimeType returns the stored MIME type for an object key. Test helper.
func (b *Backend) MimeType(key string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.mimeTypes[key]
}

// UploadCount returns the number of successful uploads. Test helper.
func (b *Backend) UploadCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.uploads
}

// ObjectCount returns the number of blobs currently stored. Test helper.
func (b *Backend) ObjectCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.objects)
}

func keyFromURL(storageURL string) string {
	return strings.TrimPrefix(storageURL, urlScheme)
}
