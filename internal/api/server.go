// Package api provides the HTTP API server and handlers for the Shelfline application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shelfline/shelfline-server/internal/ratelimit"
	"github.com/shelfline/shelfline-server/internal/service"
	"github.com/shelfline/shelfline-server/internal/store"
	"github.com/shelfline/shelfline-server/internal/validation"
)

// Services groups the business services the handlers depend on.
type Services struct {
	Catalog      *service.CatalogService
	Lending      *service.LendingService
	Notification *service.NotificationService
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store     store.Store
	services  *Services
	validator *validation.Validator
	limiter   *ratelimit.KeyedRateLimiter
	router    *chi.Mux
	logger    *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// The limiter may be nil to disable rate limiting (tests).
func NewServer(st store.Store, services *Services, limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) *Server {
	s := &Server{
		store:     st,
		services:  services,
		validator: validation.New(),
		limiter:   limiter,
		router:    chi.NewRouter(),
		logger:    logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	// The notification list is polled by a browser SPA on another origin.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Catalog.
		r.Route("/books", func(r chi.Router) {
			r.Get("/", s.handleListBooks)
			r.Post("/", s.handleCreateBook)
			r.Get("/{id}", s.handleGetBook)
			r.Patch("/{id}", s.handleUpdateBook)
			r.Delete("/{id}", s.handleDeleteBook)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
			r.Patch("/{id}", s.handleRenameCategory)
			r.Delete("/{id}", s.handleDeleteCategory)
		})

		// Lending.
		r.Route("/borrow", func(r chi.Router) {
			r.Get("/", s.handleListAllBorrows)
			r.Get("/user/{userID}", s.handleListUserBorrows)
			r.With(s.rateLimit).Post("/{bookID}", s.handleBorrow)
		})
		r.With(s.rateLimit).Post("/return/{bookID}", s.handleReturn)

		// Notifications.
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/{userID}", s.handleListNotifications)
			r.Post("/read/{id}", s.handleMarkNotificationRead)
		})

		// Admin.
		r.Post("/admin/notifications/test", s.handleSendTestNotification)
	})
}
