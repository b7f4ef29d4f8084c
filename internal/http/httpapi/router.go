package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"adcraft/internal/http/handlers"
	"adcraft/internal/infra"
	"adcraft/internal/middleware"
)

// NewRouter assembles the HTTP surface. Generation routes sit behind the
// per-IP rate limit; the static route serves the local-storage fallback.
func NewRouter(app *handlers.App, cfg *infra.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(nil),
	)

	r.Get("/healthz", app.Health)
	r.Get("/categories", app.Categories)
	r.Get("/inspiration/{category}", app.Inspiration)

	r.Group(func(r chi.Router) {
		if cfg.RateLimitPerMin > 0 {
			r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
		}
		r.Post("/generate-ad", app.GenerateAd)
		r.Post("/generate-with-references", app.GenerateWithReferences)
		r.Post("/edit-image", app.EditImage)
		r.Post("/reference-style-transfer", app.ReferenceStyleTransfer)
		r.Post("/composite-ad", app.CompositeAd)
		r.Post("/mask-edit", app.MaskEdit)
	})

	r.Route("/gallery", func(r chi.Router) {
		r.Get("/", app.GalleryList)
		r.Get("/search", app.GallerySearch)
		r.Get("/download", app.GalleryDownload)
		r.Get("/category/{category}", app.GalleryByCategory)
		r.Delete("/{image_id}", app.GalleryDelete)
	})

	if app.Local != nil {
		fileServer := http.StripPrefix(cfg.StaticBaseURL+"/", http.FileServer(http.Dir(app.Local.BasePath())))
		r.Get(cfg.StaticBaseURL+"/*", fileServer.ServeHTTP)
	}

	return r
}
