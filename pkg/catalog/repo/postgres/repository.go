// Package postgres implements the catalog repositories over PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE contents (
//	    id            uuid PRIMARY KEY,
//	    title         text NOT NULL,
//	    description   text NOT NULL,
//	    content_type  text NOT NULL,
//	    storage_url   text NOT NULL,
//	    thumbnail_url text,
//	    duration      integer NOT NULL,
//	    created_at    timestamptz NOT NULL,
//	    updated_at    timestamptz NOT NULL
//	);
//
//	CREATE TABLE users (
//	    id              uuid PRIMARY KEY,
//	    email           text NOT NULL UNIQUE,
//	    hashed_password text NOT NULL,
//	    is_active       boolean NOT NULL DEFAULT true
//	);
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mediakit/catalog/pkg/catalog"
)

// DBTX is an interface that allows us to use either a connection pool or a
// transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements catalog.Repository and catalog.UserRepository using
// PostgreSQL. Every method is a single statement, so each call is atomic on
// its own.
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with a connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// handlePgError translates driver errors into domain errors where a domain
// meaning exists and annotates the rest.
func handlePgError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if pgErr.TableName == "users" {
				return catalog.ErrEmailTaken
			}
			return fmt.Errorf("duplicate entry in %s", operation)
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Content operations

func (r *Repository) CreateContent(ctx context.Context, content *catalog.Content) error {
	query := `
		INSERT INTO contents (
			id, title, description, content_type, storage_url,
			thumbnail_url, duration, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		content.ID, content.Title, content.Description, content.ContentType,
		content.StorageURL, content.ThumbnailURL, content.Duration,
		content.CreatedAt, content.UpdatedAt)

	if err != nil {
		return handlePgError("create content", err)
	}

	return nil
}

func (r *Repository) GetContent(ctx context.Context, id uuid.UUID) (*catalog.Content, error) {
	query := `
		SELECT id, title, description, content_type, storage_url,
		       thumbnail_url, duration, created_at, updated_at
		FROM contents WHERE id = $1`

	var content catalog.Content
	err := r.db.QueryRow(ctx, query, id).Scan(
		&content.ID, &content.Title, &content.Description, &content.ContentType,
		&content.StorageURL, &content.ThumbnailURL, &content.Duration,
		&content.CreatedAt, &content.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrContentNotFound
		}
		return nil, handlePgError("get content", err)
	}

	return &content, nil
}

func (r *Repository) ListContent(ctx context.Context, offset, limit int) ([]*catalog.Content, error) {
	query := `
		SELECT id, title, description, content_type, storage_url,
		       thumbnail_url, duration, created_at, updated_at
		FROM contents
		ORDER BY created_at, id
		OFFSET $1 LIMIT $2`

	rows, err := r.db.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, handlePgError("list content", err)
	}
	defer rows.Close()

	contents := []*catalog.Content{}
	for rows.Next() {
		var content catalog.Content
		if err := rows.Scan(
			&content.ID, &content.Title, &content.Description, &content.ContentType,
			&content.StorageURL, &content.ThumbnailURL, &content.Duration,
			&content.CreatedAt, &content.UpdatedAt); err != nil {
			return nil, handlePgError("list content", err)
		}
		contents = append(contents, &content)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePgError("list content", err)
	}

	return contents, nil
}

func (r *Repository) UpdateContent(ctx context.Context, content *catalog.Content) error {
	query := `
		UPDATE contents SET
			title = $2, description = $3, storage_url = $4,
			thumbnail_url = $5, duration = $6, updated_at = $7
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		content.ID, content.Title, content.Description, content.StorageURL,
		content.ThumbnailURL, content.Duration, content.UpdatedAt)
	if err != nil {
		return handlePgError("update content", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrContentNotFound
	}

	return nil
}

func (r *Repository) DeleteContent(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM contents WHERE id = $1`, id)
	if err != nil {
		return handlePgError("delete content", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrContentNotFound
	}

	return nil
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, user *catalog.User) error {
	query := `
		INSERT INTO users (id, email, hashed_password, is_active)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.HashedPassword, user.IsActive)
	if err != nil {
		return handlePgError("create user", err)
	}

	return nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*catalog.User, error) {
	query := `
		SELECT id, email, hashed_password, is_active
		FROM users WHERE email = $1`

	var user catalog.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.HashedPassword, &user.IsActive)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrUserNotFound
		}
		return nil, handlePgError("get user by email", err)
	}

	return &user, nil
}
