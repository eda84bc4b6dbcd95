/**
 * @description
 * This file sets up the HTTP router for the tracker-service. It defines the
 * API endpoints, associates them with their corresponding handlers, and
 * applies middleware for logging, panic recovery, CORS, authentication, and
 * write rate limiting.
 *
 * @dependencies
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 * - github.com/go-chi/cors: CORS policy handling.
 * - The service's internal packages for handlers and configuration.
 */

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/subtally/tracker-service/internal/config"
)

// NewRouter creates and configures a new HTTP router.
func NewRouter(cfg *config.Config, handlers *SubscriptionHandlers, limiter WriteRateLimiter) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg.CORSAllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// The status vocabulary is public so clients can render pickers before
	// the user signs in.
	r.Get("/api/v1/statuses", handlers.StatusVocabularyHandler)

	// Group routes that require authentication.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.JWTSecret))
		r.Use(WriteRateLimitMiddleware(limiter, cfg.WriteRateLimitPerMinute))

		r.Route("/api/v1/subscriptions", func(r chi.Router) {
			r.Post("/", handlers.CreateSubscriptionHandler)
			r.Get("/", handlers.ListSubscriptionsHandler)
			r.Get("/summary", handlers.SpendSummaryHandler)
			r.Get("/reminders", handlers.RemindersHandler)
			r.Get("/{id}", handlers.GetSubscriptionHandler)
			r.Patch("/{id}", handlers.UpdateSubscriptionHandler)
			r.Delete("/{id}", handlers.DeleteSubscriptionHandler)
		})
	})

	return r
}

// allowedOrigins splits the configured comma-separated origin list.
func allowedOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}
