package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/punctoo/punctoo/internal/api/handlers"
	"github.com/punctoo/punctoo/internal/api/middleware"
	"github.com/punctoo/punctoo/internal/auth"
	"github.com/punctoo/punctoo/internal/codes"
	"github.com/punctoo/punctoo/internal/database/models"
	"github.com/punctoo/punctoo/internal/metrics"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB              *gorm.DB
	Redis           *redis.Client
	Logger          *slog.Logger
	AuthService     *auth.Service
	AdminService    *auth.AdminService
	Allocator       *codes.Allocator
	Metrics         *metrics.Collector
	CookieName      string
	AdminCookieName string
	SecureCookies   bool
	AllowedOrigins  []string
	RateLimitReqs   int
	RateLimitSecs   int
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	csrfStore := middleware.NewCSRFStore()

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.CookieName, cfg.SecureCookies)
	employeeHandler := handlers.NewEmployeeHandler(cfg.DB, cfg.Allocator)
	tagHandler := handlers.NewTagHandler(cfg.DB, cfg.Allocator)
	orderHandler := handlers.NewOrderHandler(cfg.DB)
	adminHandler := handlers.NewAdminHandler(cfg.DB, cfg.AdminService, cfg.AdminCookieName, cfg.SecureCookies)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Tenant-facing routes. The principal and tenant resolvers run on
		// every route in this group; guards are applied per subgroup.
		r.Group(func(r chi.Router) {
			r.Use(middleware.ResolvePrincipal(cfg.AuthService, cfg.CookieName, cfg.SecureCookies, cfg.Metrics))
			r.Use(middleware.ResolveTenant(cfg.AuthService))

			// Public auth endpoints. The tight limit keeps credential
			// stuffing off the login and signup routes.
			credentialLimit := middleware.RateLimitByPrincipal(10, 60)
			r.With(credentialLimit).Post("/auth/signup", authHandler.Signup)
			r.With(credentialLimit).Post("/auth/login", authHandler.Login)

			// Signed-in, with or without an active company
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuthenticated)

				r.Post("/auth/logout", authHandler.Logout)
				r.Get("/me", authHandler.Me)
			})

			// Company workspace
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuthenticated)
				r.Use(middleware.RequireCompany)
				r.Use(middleware.CSRF(csrfStore, middleware.SessionCSRFCookie, middleware.SessionCSRFKey))

				staff := middleware.RequireRole(models.RoleOwner, models.RoleAdmin, models.RoleManager)
				purchasing := middleware.RequireRole(models.RoleOwner, models.RoleAdmin)

				r.Route("/employees", func(r chi.Router) {
					r.Get("/", employeeHandler.List)
					r.With(staff).Post("/", employeeHandler.Create)
					r.With(staff).Put("/{id}", employeeHandler.Rename)
				})

				r.Route("/tags", func(r chi.Router) {
					r.Get("/", tagHandler.List)
					r.With(staff).Post("/", tagHandler.Create)
				})

				r.Route("/orders", func(r chi.Router) {
					r.Get("/", orderHandler.List)
					r.With(purchasing).Post("/", orderHandler.Create)
				})
			})
		})

		// Admin console. A separate resolver track; tenant sessions never
		// grant access here.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.ResolveAdmin(cfg.AdminService, cfg.AdminCookieName, cfg.SecureCookies))

			r.With(middleware.RateLimitByPrincipal(10, 60)).Post("/login", adminHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Use(middleware.CSRF(csrfStore, middleware.AdminCSRFCookie, middleware.AdminCSRFKey))

				r.Post("/logout", adminHandler.Logout)
				r.Get("/dashboard", adminHandler.Dashboard)
				r.Get("/customers", adminHandler.ListCustomers)
				r.Get("/customers/{id}", adminHandler.GetCustomer)
				r.Post("/customers/{id}/seen", adminHandler.MarkCustomerSeen)
				r.Post("/orders/{id}/done", adminHandler.MarkOrderDone)
			})
		})
	})

	return &Router{r}
}
