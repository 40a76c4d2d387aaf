package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/silema/silema/internal/api/handler"
	"github.com/silema/silema/internal/cache"
	"github.com/silema/silema/internal/checkin"
	"github.com/silema/silema/internal/config"
	"github.com/silema/silema/internal/store"
)

// Deps are the collaborators the router hands to its handlers.
type Deps struct {
	Store    store.Store
	CheckIns *checkin.Service
	Monitor  handler.Monitor
	Cache    *cache.Cache
	Logger   *slog.Logger
}

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(deps Deps, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Authorization", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(deps.Store, deps.CheckIns, deps.Monitor, deps.Cache, deps.Logger)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// Prometheus
	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(TokenAuthMiddleware(cfg.APIToken))

		// Monitor
		r.Post("/monitor/run", h.RunMonitor)

		r.Route("/users/{userID}", func(r chi.Router) {
			// Account
			r.Get("/", h.GetUser)
			r.Delete("/", h.DeleteUser)

			r.Post("/test-alert", h.SendTestAlert)
			r.Get("/alerts", h.ListAlerts)

			// Check-ins
			r.Post("/checkins", h.CreateCheckIn)
			r.Get("/checkins/last", h.GetLastCheckIn)
			r.Get("/checkins/recent", h.GetRecentCheckIns)
			r.Get("/checkins/stats", h.GetCheckInStats)

			// Settings
			r.Get("/settings", h.GetSettings)
			r.Put("/settings", h.UpdateSettings)
			r.Put("/smtp", h.UpdateSMTP)

			// Contacts
			r.Get("/contacts", h.ListContacts)
			r.Post("/contacts", h.AddContact)
			r.Put("/contacts/{contactID}", h.UpdateContact)
			r.Delete("/contacts/{contactID}", h.DeleteContact)
			r.Put("/contacts/{contactID}/primary", h.SetPrimaryContact)
		})
	})

	return r
}
