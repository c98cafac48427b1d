package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"numu-analytics-backend/internal/handlers"
	"numu-analytics-backend/internal/middleware"
)

func New(
	jwtAuth *middleware.JWTAuth,
	analyticsHandler *handlers.AnalyticsHandler,
	syncHandler *handlers.SyncHandler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Sync trigger rate limiter (10 req/min per IP)
	syncLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {

		// ──── Response Routes (public, read-only) ────
		r.Get("/responses", analyticsHandler.Records)
		r.Get("/count", analyticsHandler.Count)

		// ──── Analytics Routes ────
		r.Route("/analytics", func(r chi.Router) {
			r.Get("/dissemination", analyticsHandler.Dissemination)
			r.Get("/geographic", analyticsHandler.Geographic)
			r.Get("/interests", analyticsHandler.Interests)
			r.Get("/learner/{email}", analyticsHandler.Learner)
		})

		// ──── Sync Routes ────
		r.Route("/sync", func(r chi.Router) {
			r.Use(syncLimiter.Middleware)
			r.Get("/status", syncHandler.Status)

			// Triggering a sync requires a service token
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/", syncHandler.Trigger)
			})
		})
	})

	return r
}
