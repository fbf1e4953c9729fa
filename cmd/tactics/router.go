package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/tactics-srs/internal/api"
	apiMiddleware "github.com/phrazzld/tactics-srs/internal/api/middleware"
)

// newRouter creates the review server router.
func newRouter(svc api.PracticeService, loc *time.Location, now func() time.Time, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace(logger))

	h := api.NewReviewHandler(svc, loc, now, logger)

	// Browser pages
	r.Get("/", h.Root)
	r.Get("/favicon.ico", h.Favicon)
	r.Get("/queue", h.QueuePage)

	// JSON endpoints may be called from any origin.
	r.Group(func(r chi.Router) {
		r.Use(apiMiddleware.AllowAnyOrigin)

		r.Get("/health", h.Health)
		r.Get("/api/queue", h.QueueJSON)
		r.Get("/log", h.Log)
		r.Post("/log", h.Log)
		r.Options("/log", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})

	r.NotFound(apiMiddleware.AllowAnyOrigin(http.HandlerFunc(h.NotFound)).ServeHTTP)

	return r
}
