package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/polancodf2024/consulta/internal/http/handlers"
	httpmiddleware "github.com/polancodf2024/consulta/internal/http/middleware"
	"github.com/polancodf2024/consulta/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	AuthHandler    *handlers.AuthHandler
	CatalogHandler *handlers.CatalogHandler
	BookingHandler *handlers.BookingHandler
	Sessions       httpmiddleware.SessionVerifier
	MetricsHandler http.Handler
}

// New creates a Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", handlers.Health)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		public.Post("/auth/login", cfg.AuthHandler.Login)
	})

	// Session-protected endpoints
	r.Group(func(protected chi.Router) {
		protected.Use(httpmiddleware.SessionAuth(cfg.Sessions))

		protected.Route("/catalog", func(r chi.Router) {
			r.Get("/", cfg.CatalogHandler.Grouped)
			r.Get("/categories", cfg.CatalogHandler.Categories)
			r.Get("/categories/{category}/services", cfg.CatalogHandler.Services)
		})

		protected.Route("/bookings", func(r chi.Router) {
			r.Post("/", cfg.BookingHandler.Submit)
			r.Get("/{batchID}/document/{page}", cfg.BookingHandler.DocumentPage)
		})
	})

	return r
}
