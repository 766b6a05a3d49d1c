package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/mediakit/catalog/pkg/catalog"
)

// Pinger is the slice of the database pool the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and dependency health.
type HealthHandler struct {
	db    Pinger // nil when running without a database
	store catalog.BlobStore
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger, store catalog.BlobStore) *HealthHandler {
	return &HealthHandler{db: db, store: store}
}

// Routes returns the routes for health checks
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Health)
	r.Get("/detailed", h.DetailedHealth)

	return r
}

// Health is the liveness probe
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "healthy"})
}

// DetailedHealth probes the database and the object store, reporting each
// dependency independently.
func (h *HealthHandler) DetailedHealth(w http.ResponseWriter, r *http.Request) {
	databaseStatus := "ok"
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			databaseStatus = "error: " + err.Error()
		}
	}

	storageStatus := "ok"
	if err := h.store.Ping(r.Context()); err != nil {
		storageStatus = "error: " + err.Error()
	}

	render.JSON(w, r, map[string]string{
		"database": databaseStatus,
		"s3":       storageStatus,
	})
}
