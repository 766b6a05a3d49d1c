// Package s3 provides the S3-compatible object store gateway.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mediakit/catalog/pkg/catalog"
)

// Config options for the S3 backend
type Config struct {
	Region          string // AWS region
	Bucket          string // S3 bucket name
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // Use path-style addressing (default: false)

	// MaxConcurrentUploads bounds how many uploads stream through this
	// backend at once; further uploads wait. 0 means unbounded.
	MaxConcurrentUploads int
}

// Backend is an S3-compatible implementation of the catalog.BlobStore
// interface. Uploads stream through the s3 manager uploader rather than
// buffering whole files in memory.
type Backend struct {
	client        *s3.Client
	uploader      *manager.Uploader
	presignClient *s3.PresignClient
	bucket        string
	config        Config
	uploadSlots   chan struct{}
}

// New creates a new S3-compatible storage backend
func New(config Config) (*Backend, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	if config.Region == "" {
		config.Region = "us-east-1"
	}

	var awsCfg aws.Config
	var err error

	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				config.AccessKeyID,
				config.SecretAccessKey,
				"",
			)),
		)
	} else {
		// Use default credential chain
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
		)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Options...)

	backend := &Backend{
		client:        client,
		uploader:      manager.NewUploader(client),
		presignClient: s3.NewPresignClient(client),
		bucket:        config.Bucket,
		config:        config,
	}

	if config.MaxConcurrentUploads > 0 {
		backend.uploadSlots = make(chan struct{}, config.MaxConcurrentUploads)
	}

	return backend, nil
}

// Upload streams the payload to S3 under the derived object key and returns
// the object's fully-qualified URL. Failures come back as *catalog.StorageError
// wrapping the transport error.
func (b *Backend) Upload(ctx context.Context, reader io.Reader, params catalog.UploadParams) (string, error) {
	key := catalog.ObjectKey(params.ContentType, params.ContentID, params.FileName)

	if b.uploadSlots != nil {
		select {
		case b.uploadSlots <- struct{}{}:
			defer func() { <-b.uploadSlots }()
		case <-ctx.Done():
			return "", &catalog.StorageError{Op: "upload", Key: key, Err: ctx.Err()}
		}
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   reader,
	}
	if params.MimeType != "" {
		input.ContentType = aws.String(params.MimeType)
	}

	if _, err := b.uploader.Upload(ctx, input); err != nil {
		return "", &catalog.StorageError{Op: "upload", Key: key, Err: err}
	}

	return b.objectURL(key), nil
}

// Delete removes the object behind a storage URL. The underlying store may
// report an error for a missing key; the caller decides whether that is
// fatal.
func (b *Backend) Delete(ctx context.Context, storageURL string) error {
	key := b.keyFromURL(storageURL)

	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return &catalog.StorageError{Op: "delete", Key: key, Err: err}
	}

	return nil
}

// PresignURL returns a time-limited GET URL for the object behind a storage
// URL.
func (b *Backend) PresignURL(ctx context.Context, storageURL string, ttl time.Duration) (string, error) {
	key := b.keyFromURL(storageURL)

	result, err := b.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = ttl
	})
	if err != nil {
		return "", &catalog.StorageError{Op: "presign", Key: key, Err: err}
	}

	return result.URL, nil
}

// Ping verifies the bucket is reachable with the configured credentials.
func (b *Backend) Ping(ctx context.Context) error {
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(b.bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %s not reachable: %w", b.bucket, err)
	}
	return nil
}

// objectURL builds the dereferenceable URL for a key: virtual-hosted AWS
// form by default, endpoint/bucket/key for custom endpoints (MinIO etc).
func (b *Backend) objectURL(key string) string {
	if b.config.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(b.config.Endpoint, "/"), b.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", b.bucket, b.config.Region, key)
}

// keyFromURL recovers the object key from a storage URL produced by
// objectURL. The bucket segment is stripped for path-style URLs.
func (b *Backend) keyFromURL(storageURL string) string {
	u, err := url.Parse(storageURL)
	if err != nil {
		return strings.TrimPrefix(storageURL, "/")
	}
	key := strings.TrimPrefix(u.Path, "/")
	key = strings.TrimPrefix(key, b.bucket+"/")
	return key
}
