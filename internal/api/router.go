package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth"
	"github.com/mediakit/catalog/pkg/catalog"
)

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	Service   catalog.Service
	Auth      catalog.AuthService
	TokenAuth *jwtauth.JWTAuth
	TokenTTL  time.Duration
	DB        Pinger // nil when running without a database
	Store     catalog.BlobStore
}

// NewRouter assembles the full route table with the standard middleware
// stack.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Mount("/content", NewContentHandler(deps.Service).Routes(deps.TokenAuth))
	r.Mount("/auth", NewAuthHandler(deps.Auth, deps.TokenAuth, deps.TokenTTL).Routes())
	r.Mount("/health", NewHealthHandler(deps.DB, deps.Store).Routes())

	return r
}
