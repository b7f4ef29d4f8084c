package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"adcraft/internal/domain"
	"adcraft/pkg/zip"
)

type galleryItem struct {
	ImageID     string `json:"image_id"`
	URL         string `json:"url"`
	Prompt      string `json:"prompt,omitempty"`
	AdText      string `json:"ad_text,omitempty"`
	Category    string `json:"category,omitempty"`
	Size        string `json:"size,omitempty"`
	IsReference bool   `json:"is_reference"`
	Title       string `json:"title,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// GalleryList returns persisted artifacts, newest first.
func (a *App) GalleryList(w http.ResponseWriter, r *http.Request) {
	if a.Gallery == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "metadata store is not configured")
		return
	}
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	includeReference := r.URL.Query().Get("include_reference") != "false"
	records, err := a.Gallery.ListAll(r.Context(), limit, offset, includeReference)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to list images")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": galleryItems(records)})
}

// GallerySearch matches persisted artifacts against prompt and ad text.
func (a *App) GallerySearch(w http.ResponseWriter, r *http.Request) {
	if a.Gallery == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "metadata store is not configured")
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "q is required")
		return
	}
	records, err := a.Gallery.Search(r.Context(), query, queryInt(r, "limit", 20))
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to search images")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": galleryItems(records)})
}

// GalleryByCategory returns the newest artifacts in one category.
func (a *App) GalleryByCategory(w http.ResponseWriter, r *http.Request) {
	if a.Gallery == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "metadata store is not configured")
		return
	}
	category := chi.URLParam(r, "category")
	records, err := a.Gallery.ListByCategory(r.Context(), category, queryInt(r, "limit", 20))
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to list images")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": galleryItems(records)})
}

// GalleryDelete removes an artifact from storage and drops its metadata.
// The storage removal is attempted first; a missing metadata row is not an
// error once the object is gone.
func (a *App) GalleryDelete(w http.ResponseWriter, r *http.Request) {
	imageID := chi.URLParam(r, "image_id")
	if imageID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "image_id required")
		return
	}
	folder := r.URL.Query().Get("folder")
	if folder == "" {
		folder = domain.FolderGenerated
	}
	path := folder + "/" + imageID
	if err := a.Store.Remove(r.Context(), path); err != nil {
		a.Logger.Warn().Err(err).Str("path", path).Msg("storage removal failed")
	}
	// An artifact that landed on disk via the fallback path has no remote
	// copy, so the local store is always swept too.
	if a.Local != nil {
		if err := a.Local.Remove(r.Context(), path); err != nil && !errors.Is(err, os.ErrNotExist) {
			a.Logger.Warn().Err(err).Str("path", path).Msg("local removal failed")
		}
	}
	if a.Gallery != nil {
		if err := a.Gallery.Delete(r.Context(), imageID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusInternalServerError, "internal", "failed to delete metadata")
			return
		}
	}
	a.json(w, http.StatusOK, map[string]string{"deleted": imageID})
}

// GalleryDownload streams a zip archive of the locally stored artifacts in a
// folder. It serves the filesystem fallback copies only; remotely stored
// artifacts are fetched via their public URLs instead.
func (a *App) GalleryDownload(w http.ResponseWriter, r *http.Request) {
	if a.Local == nil {
		a.error(w, http.StatusNotFound, "not_found", "local storage is not configured")
		return
	}
	folder := r.URL.Query().Get("folder")
	if folder == "" {
		folder = domain.FolderGenerated
	}
	entries, err := a.Local.List(r.Context(), folder)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to list folder")
		return
	}
	var assets []zip.Asset
	for _, entry := range entries {
		data, err := a.Local.Read(folder + "/" + entry.Name)
		if err != nil {
			continue
		}
		assets = append(assets, zip.Asset{Filename: entry.Name, MIME: "image/png", Data: data})
	}
	if len(assets) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "no images in folder")
		return
	}
	archive := zip.ArchiveAssets(assets)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.zip", folder))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func galleryItems(records []domain.ImageRecord) []galleryItem {
	items := make([]galleryItem, 0, len(records))
	for _, rec := range records {
		items = append(items, galleryItem{
			ImageID:     rec.ImageID,
			URL:         rec.PublicURL,
			Prompt:      rec.Prompt,
			AdText:      rec.AdText,
			Category:    rec.Category,
			Size:        rec.Size,
			IsReference: rec.IsReference,
			Title:       rec.Title,
			CreatedAt:   rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return items
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			return i
		}
	}
	return fallback
}
