package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// adCategories is the fixed set the frontend offers for inspiration browsing.
var adCategories = []string{
	"travel", "technology", "beauty", "fitness",
	"finance", "food", "fashion", "real estate",
}

// Categories returns the available ad categories.
func (a *App) Categories(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"categories": adCategories})
}

// Inspiration returns popular stock images for a category.
func (a *App) Inspiration(w http.ResponseWriter, r *http.Request) {
	if a.Stock == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "stock search is not configured")
		return
	}
	category := chi.URLParam(r, "category")
	images, err := a.Stock.SearchByCategory(r.Context(), category, queryInt(r, "limit", 20))
	if err != nil {
		a.Logger.Warn().Err(err).Str("category", category).Msg("stock search failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to fetch inspiration images")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"images": images})
}
