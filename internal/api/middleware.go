/**
 * @description
 * This file contains custom middleware for the HTTP router: bearer token
 * authentication and a distributed rate limit on write endpoints. Middlewares
 * process requests before they reach the final handler.
 *
 * @dependencies
 * - github.com/golang-jwt/jwt/v5: JWT parsing and signature verification.
 * - context, net/http, strings: Standard Go libraries.
 */

package api

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// userIDContextKey is the key under which the authenticated user ID is stored.
const userIDContextKey contextKey = "userID"

// AuthMiddleware validates the Authorization header as a bearer JWT signed
// with the shared HS256 secret and injects the token subject into the
// request context.
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	secret := []byte(jwtSecret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}), jwt.WithLeeway(30*time.Second))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
			if authHeader == "" {
				respondWithError(w, http.StatusUnauthorized, "Authorization required", CodeUnauthorized)
				return
			}

			tokenString, ok := bearerToken(authHeader)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "Invalid Authorization header format", CodeUnauthorized)
				return
			}

			claims := jwt.MapClaims{}
			token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
				return secret, nil
			})
			if err != nil || !token.Valid {
				respondWithError(w, http.StatusUnauthorized, "Invalid token", CodeUnauthorized)
				return
			}

			sub, ok := claims["sub"].(string)
			if !ok || strings.TrimSpace(sub) == "" {
				respondWithError(w, http.StatusUnauthorized, "Invalid token", CodeUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the authenticated user ID from request context.
func UserFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	return userID, ok
}

func bearerToken(authHeader string) (string, bool) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}

	return token, true
}

// WriteRateLimiter counts write requests per subject inside a fixed window.
// app.RedisWriteRateLimiter satisfies this interface.
type WriteRateLimiter interface {
	ConsumeRateLimit(ctx context.Context, scope string, subject string, limit int, window time.Duration) (int, int, error)
}

// WriteRateLimitMiddleware enforces a per-user budget on mutating requests.
// Read methods pass through untouched, as do all requests when the limiter
// is nil or the limit is non-positive. Redis failures admit the request.
func WriteRateLimitMiddleware(limiter WriteRateLimiter, requestsPerMinute int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || requestsPerMinute <= 0 || !isWriteMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			subject, ok := UserFromContext(r.Context())
			if !ok || subject == "" {
				subject = "anonymous"
			}

			count, retryAfter, err := limiter.ConsumeRateLimit(r.Context(), "write", subject, requestsPerMinute, time.Minute)
			if err != nil {
				log.Printf("level=warn component=api msg=\"rate limit check failed, request admitted\" subject=%s err=%v", subject, err)
				next.ServeHTTP(w, r)
				return
			}

			if count > requestsPerMinute {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				respondWithError(w, http.StatusTooManyRequests, "Too many write requests. Please try again shortly.", CodeRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
