// Package api wires the chi router, middleware and handlers.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/skynolimit/topscores/internal/api/handler"
)

// NewRouter creates and configures the chi router with all middleware and routes.
func NewRouter(deps handler.Deps) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   deps.Cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// --- Handler dependencies ---
	h := handler.New(deps)

	// --- Routes ---

	r.Get("/", h.Root)
	r.Get("/health/db", h.HealthCheckDB)

	// Swagger UI over the embedded OpenAPI document.
	r.Get("/docs/doc.json", serveOpenAPIDoc)
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthcheck", h.HealthCheck)

		r.Route("/user/{deviceId}", func(r chi.Router) {
			r.Get("/matches/fixtures", h.GetUserFixtures)
			r.Get("/matches/results", h.GetUserResults)
			r.Get("/preferences", h.GetUserPreferences)
			r.Put("/preferences", h.PutUserPreferences)
		})

		r.Route("/predictor", func(r chi.Router) {
			r.Post("/init", h.PredictorInit)
			r.Post("/pause", h.PredictorPause)
			r.Post("/resume", h.PredictorResume)
		})

		r.Route("/debug", func(r chi.Router) {
			r.Get("/matches/all", h.DebugAllMatches)
			r.Get("/match/{id}", h.DebugMatch)
			r.Get("/match/{id}/interested", h.DebugMatchInterested)
			r.Get("/notifications", h.DebugNotifications)
			r.Post("/notifications/test/user/{deviceId}", h.DebugTestNotification)
			r.Get("/teams", h.DebugTeams)
			r.Get("/teams/top", h.DebugTopTeams)
			r.Get("/parseInfo", h.DebugParseInfo)
		})
	})

	return r
}
