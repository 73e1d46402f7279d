package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/analytics", func(r chi.Router) {
			r.Get("/summary", h.HandleSummary)
			r.Get("/comparison", h.HandleComparison)
			r.Get("/trends", h.HandleTrends)
			r.Get("/insights", h.HandleInsights)
		})

		r.Route("/tenants", func(r chi.Router) {
			r.Get("/{tenantID}", h.HandleGetTenant)
			r.Get("/{tenantID}/domains", h.HandleListDomains)
		})
		r.Get("/domains/{domainID}/mailboxes", h.HandleListMailboxes)
	})

	return r
}
