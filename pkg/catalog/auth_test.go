package catalog_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"github.com/mediakit/catalog/pkg/catalog"
	repomem "github.com/mediakit/catalog/pkg/catalog/repo/memory"
)

func setupAuthService(t *testing.T) (catalog.AuthService, *repomem.Repository) {
	t.Helper()

	repo := repomem.New()
	auth, err := catalog.NewAuthService(repo, nil)
	require.NoError(t, err)

	return auth, repo
}

func TestNewAuthService(t *testing.T) {
	_, err := catalog.NewAuthService(nil, nil)
	assert.Error(t, err)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		auth, _ := setupAuthService(t)

		user, err := auth.Register(ctx, catalog.RegisterRequest{
			Email:    "viewer@example.com",
			Password: "opensesame",
		})
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "viewer@example.com", user.Email)
		assert.True(t, user.IsActive)

		// stored hash verifies against the plaintext and is not the plaintext
		assert.NotEqual(t, "opensesame", user.HashedPassword)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("opensesame")))
	})

	t.Run("duplicate email", func(t *testing.T) {
		auth, _ := setupAuthService(t)

		_, err := auth.Register(ctx, catalog.RegisterRequest{Email: "dup@example.com", Password: "first"})
		require.NoError(t, err)

		_, err = auth.Register(ctx, catalog.RegisterRequest{Email: "dup@example.com", Password: "second"})
		assert.ErrorIs(t, err, catalog.ErrEmailTaken)
	})

	t.Run("missing fields", func(t *testing.T) {
		auth, _ := setupAuthService(t)

		_, err := auth.Register(ctx, catalog.RegisterRequest{Email: "", Password: "pw"})
		assert.Error(t, err)

		_, err = auth.Register(ctx, catalog.RegisterRequest{Email: "a@example.com", Password: ""})
		assert.Error(t, err)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		auth, _ := setupAuthService(t)

		registered, err := auth.Register(ctx, catalog.RegisterRequest{
			Email:    "viewer@example.com",
			Password: "opensesame",
		})
		require.NoError(t, err)

		user, err := auth.Authenticate(ctx, "viewer@example.com", "opensesame")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		auth, _ := setupAuthService(t)

		_, err := auth.Register(ctx, catalog.RegisterRequest{Email: "viewer@example.com", Password: "opensesame"})
		require.NoError(t, err)

		_, err = auth.Authenticate(ctx, "viewer@example.com", "wrong")
		assert.ErrorIs(t, err, catalog.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		auth, _ := setupAuthService(t)

		_, err := auth.Authenticate(ctx, "nobody@example.com", "whatever")
		assert.ErrorIs(t, err, catalog.ErrInvalidCredentials)
	})

	t.Run("inactive user", func(t *testing.T) {
		auth, repo := setupAuthService(t)

		hash, err := bcrypt.GenerateFromPassword([]byte("opensesame"), bcrypt.MinCost)
		require.NoError(t, err)
		require.NoError(t, repo.CreateUser(ctx, &catalog.User{
			ID:             uuid.New(),
			Email:          "dormant@example.com",
			HashedPassword: string(hash),
			IsActive:       false,
		}))

		_, err = auth.Authenticate(ctx, "dormant@example.com", "opensesame")
		assert.ErrorIs(t, err, catalog.ErrInvalidCredentials)
	})
}
