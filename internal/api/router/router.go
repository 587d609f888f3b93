package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/wolfman30/leadgate/internal/http/middleware"
	"github.com/wolfman30/leadgate/internal/leads"
	"github.com/wolfman30/leadgate/internal/session"
	"github.com/wolfman30/leadgate/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	IntakeHandler      *leads.IntakeHandler
	ListingHandler     *leads.ListingHandler
	SessionHandler     *session.Handler
	SessionGate        httpmiddleware.SessionChecker
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.IntakeHandler != nil {
			public.Route("/leads-intake", func(r chi.Router) {
				r.Post("/", cfg.IntakeHandler.CreateLead)
				r.Get("/rules", cfg.IntakeHandler.Rules)
			})
		}
		if cfg.SessionHandler != nil {
			public.Route("/admin-session", func(r chi.Router) {
				r.Post("/", cfg.SessionHandler.Login)
				r.Get("/", cfg.SessionHandler.Status)
				r.Delete("/", cfg.SessionHandler.Logout)
			})
		}
	})

	// Admin endpoints
	if cfg.ListingHandler != nil {
		r.Group(func(admin chi.Router) {
			admin.Use(httpmiddleware.RequireAdminSession(cfg.SessionGate))
			admin.Get("/leads-listing", cfg.ListingHandler.ListLeads)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
