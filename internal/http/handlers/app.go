package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"adcraft/internal/creative"
	"adcraft/internal/domain"
	"adcraft/internal/infra"
	"adcraft/internal/providers/stock"
	"adcraft/internal/storage"
)

// Pipeline is the generation surface the handlers drive.
type Pipeline interface {
	Generate(ctx context.Context, req creative.GenerateRequest) (*domain.GeneratedArtifact, error)
	Edit(ctx context.Context, req creative.EditRequest) (*domain.GeneratedArtifact, error)
	ReferenceStyleTransfer(ctx context.Context, reference []byte, prompt, size, adText string) (*domain.GeneratedArtifact, error)
	Composite(ctx context.Context, references [][]byte, prompt, size, adText string) (*domain.GeneratedArtifact, error)
	MaskEdit(ctx context.Context, image, mask []byte, prompt, size, adText string) (*domain.GeneratedArtifact, error)
}

// GalleryStore is the metadata query surface backing the gallery routes.
type GalleryStore interface {
	ListAll(ctx context.Context, limit, offset int, includeReference bool) ([]domain.ImageRecord, error)
	ListByCategory(ctx context.Context, category string, limit int) ([]domain.ImageRecord, error)
	Search(ctx context.Context, query string, limit int) ([]domain.ImageRecord, error)
	Delete(ctx context.Context, imageID string) error
}

// StockSearcher feeds the inspiration routes.
type StockSearcher interface {
	SearchByCategory(ctx context.Context, category string, perPage int) ([]stock.Image, error)
}

// App bundles the collaborators the HTTP handlers need. Gallery, Stock and
// Local are optional; their routes answer 503 or 404 when absent.
type App struct {
	Pipeline Pipeline
	Gallery  GalleryStore
	Stock    StockSearcher
	Store    storage.ObjectStore
	Local    *storage.FileStore
	Logger   infra.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, slug, message string) {
	a.json(w, code, map[string]string{"error": slug, "detail": message})
}

// pipelineError maps the error taxonomy onto HTTP responses: validation and
// undecodable images are client errors, quota and rate-limit failures are
// retryable 429s with distinct guidance, everything else is a server error.
func (a *App) pipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrUnsupportedImage):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrQuotaExceeded):
		a.error(w, http.StatusTooManyRequests, "quota_exceeded",
			"Image model quota exceeded. Please try again later or check your API credentials.")
	case errors.Is(err, domain.ErrRateLimited):
		a.error(w, http.StatusTooManyRequests, "rate_limited",
			"Image model rate limit reached. Please try again later.")
	case errors.Is(err, domain.ErrStyleExtraction):
		a.error(w, http.StatusInternalServerError, "style_extraction_failed",
			"Could not derive a style from the reference image.")
	default:
		a.error(w, http.StatusInternalServerError, "internal", "image generation failed")
	}
}

// Health reports liveness.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
