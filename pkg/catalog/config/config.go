// Package config loads server configuration from the environment and wires
// the concrete backends together. The resulting Config is built once at
// process start and passed into constructors; nothing reads the environment
// after that.
package config

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mediakit/catalog/pkg/catalog"
	repomem "github.com/mediakit/catalog/pkg/catalog/repo/memory"
	repopg "github.com/mediakit/catalog/pkg/catalog/repo/postgres"
	storagemem "github.com/mediakit/catalog/pkg/catalog/storage/memory"
	s3storage "github.com/mediakit/catalog/pkg/catalog/storage/s3"
)

// Config is the full server configuration.
type Config struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	DB   DbConfig
	Auth AuthConfig
	S3   S3Config
}

// DbConfig holds Postgres connection parameters. An empty Host selects the
// in-memory repository (tests, local development).
type DbConfig struct {
	Host     string `env:"POSTGRES_HOST" env-default:""`
	Port     uint16 `env:"POSTGRES_PORT" env-default:"5432"`
	Name     string `env:"POSTGRES_DB" env-default:"catalog"`
	User     string `env:"POSTGRES_USER" env-default:"catalog"`
	Password string `env:"POSTGRES_PASSWORD" env-default:""`
}

// AuthConfig holds JWT issuance parameters.
type AuthConfig struct {
	Secret        string `env:"SECRET_KEY" env-default:""`
	Algorithm     string `env:"ALGORITHM" env-default:"HS256"`
	ExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" env-default:"30"`
}

// S3Config holds object store parameters. An empty Bucket selects the
// in-memory blob store.
type S3Config struct {
	Bucket          string `env:"STORAGE_BUCKET" env-default:""`
	Region          string `env:"AWS_REGION" env-default:"ap-south-1"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID" env-default:""`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" env-default:""`
	Endpoint        string `env:"AWS_S3_ENDPOINT" env-default:""`
	UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`

	PresignSeconds       int `env:"S3_PRESIGN_DURATION" env-default:"3600"`
	MaxConcurrentUploads int `env:"S3_MAX_CONCURRENT_UPLOADS" env-default:"8"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.Auth.Secret == "" && c.Environment == "production" {
		return fmt.Errorf("SECRET_KEY is required in production")
	}
	if c.Auth.ExpireMinutes <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	return nil
}

// DatabaseURL assembles the pgx connection string from the parts.
func (c DbConfig) DatabaseURL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}
	return u.String()
}

// TokenTTL returns the configured access token lifetime.
func (c AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.ExpireMinutes) * time.Minute
}

// PresignTTL returns the configured streaming URL lifetime.
func (c S3Config) PresignTTL() time.Duration {
	return time.Duration(c.PresignSeconds) * time.Second
}

// OpenPool connects a pgx pool, or returns nil when no database is
// configured.
func (c *Config) OpenPool(ctx context.Context) (*pgxpool.Pool, error) {
	if c.DB.Host == "" {
		return nil, nil
	}

	pool, err := pgxpool.New(ctx, c.DB.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return pool, nil
}

// BuildRepository selects the repository implementation: Postgres when a
// pool is supplied, in-memory otherwise.
func (c *Config) BuildRepository(pool *pgxpool.Pool) (catalog.Repository, catalog.UserRepository) {
	if pool != nil {
		repo := repopg.NewWithPool(pool)
		return repo, repo
	}
	repo := repomem.New()
	return repo, repo
}

// BuildBlobStore selects the blob store implementation: S3 when a bucket is
// configured, in-memory otherwise.
func (c *Config) BuildBlobStore() (catalog.BlobStore, error) {
	if c.S3.Bucket == "" {
		return storagemem.New(), nil
	}

	return s3storage.New(s3storage.Config{
		Region:               c.S3.Region,
		Bucket:               c.S3.Bucket,
		AccessKeyID:          c.S3.AccessKeyID,
		SecretAccessKey:      c.S3.SecretAccessKey,
		Endpoint:             c.S3.Endpoint,
		UsePathStyle:         c.S3.UsePathStyle,
		MaxConcurrentUploads: c.S3.MaxConcurrentUploads,
	})
}
