package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/paisa/paisa/internal/middleware"
)

// RouterConfig wires handlers and middleware into the HTTP surface.
type RouterConfig struct {
	Logger        *slog.Logger
	Authenticator middleware.Authenticator
	RateLimit     middleware.RateLimitConfig
	CORS          middleware.CORSConfig
	Security      middleware.SecurityConfig
	MaxBodySize   int64

	Root         *Handler
	Health       *HealthHandler
	Metrics      *MetricsHandler
	Auth         *AuthHandler
	Users        *UserHandler
	Transactions *TransactionHandler
	Budgets      *BudgetHandler
	Insights     *InsightHandler
}

// NewRouter builds the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.MaxBodySize(cfg.MaxBodySize))

	r.Get("/", cfg.Root.Hello)
	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	r.Get("/metrics", cfg.Metrics.Metrics)

	authenticate := middleware.Auth(middleware.AuthConfig{
		Logger:        cfg.Logger,
		Authenticator: cfg.Authenticator,
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitIP(cfg.RateLimit))
			r.Post("/signup", cfg.Auth.Signup)
			r.Post("/login", cfg.Auth.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RateLimitUser(cfg.RateLimit))

			r.Post("/logout", cfg.Auth.Logout)

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", cfg.Users.Me)
				r.Put("/me", cfg.Users.UpdateMe)
				r.With(middleware.RequireAdmin(cfg.Logger)).Get("/", cfg.Users.List)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", cfg.Transactions.List)
				r.Post("/", cfg.Transactions.Create)
				r.Get("/{id}", cfg.Transactions.Get)
				r.Put("/{id}", cfg.Transactions.Update)
				r.Delete("/{id}", cfg.Transactions.Delete)
			})

			r.Route("/budgets", func(r chi.Router) {
				r.Get("/", cfg.Budgets.List)
				r.Post("/", cfg.Budgets.Create)
				r.Get("/{id}", cfg.Budgets.Get)
				r.Put("/{id}", cfg.Budgets.Update)
				r.Delete("/{id}", cfg.Budgets.Delete)
			})

			r.Get("/insights", cfg.Insights.Report)
			r.Post("/insights", cfg.Insights.Analyze)
		})
	})

	r.NotFound(cfg.Root.NotFound)
	r.MethodNotAllowed(cfg.Root.MethodNotAllowed)

	return r
}
