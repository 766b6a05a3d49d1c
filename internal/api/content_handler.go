package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/mediakit/catalog/pkg/catalog"
)

// maxUploadMemory caps how much of a multipart body is held in memory
// before spilling to disk.
const maxUploadMemory = 32 << 20

// ContentHandler handles HTTP requests for content records.
type ContentHandler struct {
	service catalog.Service
}

// NewContentHandler creates a new content handler
func NewContentHandler(service catalog.Service) *ContentHandler {
	return &ContentHandler{service: service}
}

// Routes returns the routes for content. Mutating operations require a
// valid bearer token; reads and streaming are public.
func (h *ContentHandler) Routes(tokenAuth *jwtauth.JWTAuth) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator)

		r.Post("/", h.CreateContent)
		r.Put("/{id}", h.UpdateContent)
		r.Delete("/{id}", h.DeleteContent)
	})

	r.Get("/", h.ListContents)
	r.Get("/{id}", h.GetContent)
	r.Get("/{id}/stream", h.StreamContent)

	return r
}

// CreateContent uploads a file and creates a content record
func (h *ContentHandler) CreateContent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	title := r.FormValue("title")
	if title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}

	contentType, ok := catalog.ParseContentType(r.FormValue("content_type"))
	if !ok {
		slog.Error("Invalid content type", "content_type", r.FormValue("content_type"))
		http.Error(w, "content_type must be 'video' or 'audio'", http.StatusBadRequest)
		return
	}

	duration, err := strconv.Atoi(r.FormValue("duration"))
	if err != nil || duration < 0 {
		http.Error(w, "duration must be a non-negative integer", http.StatusBadRequest)
		return
	}

	var thumbnailURL *string
	if v := r.FormValue("thumbnail_url"); v != "" {
		thumbnailURL = &v
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	content, err := h.service.CreateContent(r.Context(), catalog.CreateContentRequest{
		Title:        title,
		Description:  r.FormValue("description"),
		ContentType:  contentType,
		Duration:     duration,
		ThumbnailURL: thumbnailURL,
		FileName:     header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		File:         file,
	})
	if err != nil {
		slog.Error("Failed to create content", "title", title, "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Content created", "content_id", content.ID.String())
	render.JSON(w, r, content)
}

// ListContents retrieves content records with pagination
func (h *ContentHandler) ListContents(w http.ResponseWriter, r *http.Request) {
	contents, err := h.service.ListContent(r.Context(), catalog.ListContentRequest{
		Skip:  queryInt(r, "skip", 0),
		Limit: queryInt(r, "limit", 100),
	})
	if err != nil {
		slog.Error("Failed to list contents", "error", err)
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, contents)
}

// GetContent retrieves a content record by ID
func (h *ContentHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	id, ok := contentID(w, r)
	if !ok {
		return
	}

	content, err := h.service.GetContent(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, content)
}

// UpdateContent applies a partial update and optionally replaces the stored
// file
func (h *ContentHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	id, ok := contentID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	req := catalog.UpdateContentRequest{ID: id}

	if v, present := formValue(r, "title"); present {
		req.Title = &v
	}
	if v, present := formValue(r, "description"); present {
		req.Description = &v
	}
	if v, present := formValue(r, "duration"); present {
		duration, err := strconv.Atoi(v)
		if err != nil || duration < 0 {
			http.Error(w, "duration must be a non-negative integer", http.StatusBadRequest)
			return
		}
		req.Duration = &duration
	}
	if v, present := formValue(r, "thumbnail_url"); present {
		req.ThumbnailURL = &v
	}

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		req.File = file
		req.FileName = header.Filename
		req.MimeType = header.Header.Get("Content-Type")
	case errors.Is(err, http.ErrMissingFile):
		// metadata-only update
	default:
		http.Error(w, "invalid file field", http.StatusBadRequest)
		return
	}

	content, err := h.service.UpdateContent(r.Context(), req)
	if err != nil {
		slog.Error("Failed to update content", "content_id", id.String(), "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Content updated", "content_id", id.String())
	render.JSON(w, r, content)
}

// DeleteContent deletes a content record and its stored file
func (h *ContentHandler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	id, ok := contentID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteContent(r.Context(), id); err != nil {
		slog.Error("Failed to delete content", "content_id", id.String(), "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Content deleted", "content_id", id.String())
	render.JSON(w, r, map[string]string{"detail": "Content deleted successfully"})
}

// StreamContent redirects to a presigned URL for the stored file
func (h *ContentHandler) StreamContent(w http.ResponseWriter, r *http.Request) {
	id, ok := contentID(w, r)
	if !ok {
		return
	}

	url, err := h.service.StreamURL(r.Context(), id)
	if err != nil {
		slog.Error("Failed to generate stream URL", "content_id", id.String(), "error", err)
		writeServiceError(w, err)
		return
	}

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// contentID parses the id path parameter. Malformed ids read as 404 so
// unknown and malformed ids are indistinguishable to clients.
func contentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Content not found", http.StatusNotFound)
		return uuid.Nil, false
	}
	return id, true
}

// formValue reports presence separately from the value so a supplied empty
// string still counts as an explicit overwrite.
func formValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, present := r.MultipartForm.Value[key]
	if !present || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return i
}

// writeServiceError maps domain errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var storageErr *catalog.StorageError

	switch {
	case errors.Is(err, catalog.ErrContentNotFound):
		http.Error(w, "Content not found", http.StatusNotFound)
	case errors.Is(err, catalog.ErrInvalidFileType), errors.Is(err, catalog.ErrInvalidContentType):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, catalog.ErrStreamURLUnavailable):
		http.Error(w, "Unable to generate presigned URL for streaming.", http.StatusInternalServerError)
	case errors.As(err, &storageErr):
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
