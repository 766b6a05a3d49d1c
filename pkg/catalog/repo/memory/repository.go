// Package memory provides an in-memory repository, used for tests and for
// running the service without Postgres.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/mediakit/catalog/pkg/catalog"
)

// Repository implements catalog.Repository and catalog.UserRepository using
// in-memory maps.
type Repository struct {
	mu           sync.RWMutex
	contents     map[uuid.UUID]*catalog.Content
	users        map[uuid.UUID]*catalog.User
	usersByEmail map[string]uuid.UUID
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		contents:     make(map[uuid.UUID]*catalog.Content),
		users:        make(map[uuid.UUID]*catalog.User),
		usersByEmail: make(map[string]uuid.UUID),
	}
}

// Content operations

func (r *Repository) CreateContent(ctx context.Context, content *catalog.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy to avoid external modifications
	contentCopy := *content
	r.contents[content.ID] = &contentCopy

	return nil
}

func (r *Repository) GetContent(ctx context.Context, id uuid.UUID) (*catalog.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	content, exists := r.contents[id]
	if !exists {
		return nil, catalog.ErrContentNotFound
	}

	contentCopy := *content
	return &contentCopy, nil
}

func (r *Repository) ListContent(ctx context.Context, offset, limit int) ([]*catalog.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*catalog.Content, 0, len(r.contents))
	for _, c := range r.contents {
		contentCopy := *c
		all = append(all, &contentCopy)
	}

	// Stable order: creation time, then id as tie-break.
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID.String() < all[j].ID.String()
	})

	if offset >= len(all) {
		return []*catalog.Content{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *Repository) UpdateContent(ctx context.Context, content *catalog.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contents[content.ID]; !exists {
		return catalog.ErrContentNotFound
	}

	contentCopy := *content
	r.contents[content.ID] = &contentCopy

	return nil
}

func (r *Repository) DeleteContent(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contents[id]; !exists {
		return catalog.ErrContentNotFound
	}

	delete(r.contents, id)
	return nil
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, user *catalog.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.usersByEmail[user.Email]; exists {
		return catalog.ErrEmailTaken
	}

	userCopy := *user
	r.users[user.ID] = &userCopy
	r.usersByEmail[user.Email] = user.ID

	return nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*catalog.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.usersByEmail[email]
	if !exists {
		return nil, catalog.ErrUserNotFound
	}

	userCopy := *r.users[id]
	return &userCopy, nil
}
