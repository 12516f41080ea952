package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/cardiopredict/cardiopredict/internal/auth"
	"github.com/cardiopredict/cardiopredict/internal/handler"
	"github.com/cardiopredict/cardiopredict/internal/middleware"
)

// RouterConfig carries everything the router mounts.
type RouterConfig struct {
	Logger   *slog.Logger
	Verifier auth.TokenVerifier

	Health     *handler.HealthHandler
	Metrics    *handler.MetricsHandler
	Auth       *handler.AuthHandler
	Prediction *handler.PredictionHandler
	User       *handler.UserHandler

	IsDevelopment      bool
	CORSAllowedOrigins []string
	MaxRequestBodySize int64
}

// NewRouter builds the chi router with all routes and middleware.
// /prediction and /user require a bearer token; /auth, probes and metrics
// do not.
func NewRouter(cfg RouterConfig) *chi.Mux {
	h := handler.New()
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	r.Use(middleware.CORS(corsCfg))

	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	if cfg.Metrics != nil {
		r.Get("/metrics", cfg.Metrics.Metrics)
	}

	requireAuth := middleware.Auth(middleware.AuthConfig{
		Logger:   cfg.Logger,
		Verifier: cfg.Verifier,
	})
	limitBody := middleware.MaxBodySize(cfg.MaxRequestBodySize)

	r.Route("/auth", func(r chi.Router) {
		r.Use(limitBody)
		r.Post("/", cfg.Auth.Register)
		r.Post("/token", cfg.Auth.Token)
	})

	r.Route("/prediction", func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(limitBody)
		r.Get("/", cfg.Prediction.List)
		r.Post("/", cfg.Prediction.Create)
		r.Get("/{id}", cfg.Prediction.Get)
		r.Delete("/{id}", cfg.Prediction.Delete)
	})

	r.Route("/user", func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(limitBody)
		r.Get("/", cfg.User.Me)
		r.Put("/profile", cfg.User.UpdateProfile)
		r.Put("/password", cfg.User.ChangePassword)
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
