package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/speech-coach/backend/internal/api/handlers"
	"github.com/speech-coach/backend/internal/api/middleware"
	"github.com/speech-coach/backend/internal/config"
	"github.com/speech-coach/backend/internal/metrics"
	"github.com/speech-coach/backend/internal/storage"
)

func NewRouter(cfg *config.Config, store *storage.Store, alloc *storage.Allocator,
	convert handlers.Converter, analyzer handlers.Analyzer,
	m *metrics.Metrics, reg *prometheus.Registry) *chi.Mux {

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(middleware.CORSHandler(cfg.CORSOrigins)))

	// Handlers
	uploadHandler := handlers.NewUploadHandler(store, alloc, convert, cfg.MaxUploadMB<<20, m)
	analyzeHandler := handlers.NewAnalyzeHandler(store, analyzer)
	filesHandler := handlers.NewFilesHandler(store)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)
		r.Get("/list", filesHandler.List)

		// Upload carries its own MaxBytesReader sized for audio payloads.
		r.Post("/upload-audio", uploadHandler.Upload)

		r.Group(func(r chi.Router) {
			r.Use(middleware.MaxBodySize(1 << 20))
			r.Post("/analyze_with_genai", analyzeHandler.Analyze)
		})
	})

	r.Method("GET", "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return r
}
