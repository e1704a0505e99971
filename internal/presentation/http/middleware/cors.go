package middleware

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sangkips/ledger-api/internal/config"
)

// Headers the import endpoints need whatever the configuration says.
var (
	requiredAllowHeaders = []string{"Authorization", "Content-Type", IdempotencyKeyHeader, "X-Request-ID"}
	exposedHeaders       = []string{
		"Content-Disposition",
		"Content-Length",
		"Content-Type",
		"Retry-After",
		"X-Idempotency-Replayed",
		"X-RateLimit-Limit",
		"X-RateLimit-Remaining",
		"X-Request-ID",
	}
)

// CORSMiddleware creates a CORS middleware with the provided configuration
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}

	methods := cfg.AllowedMethods
	if len(methods) == 0 {
		methods = []string{"GET", "POST", "PUT", "OPTIONS"}
	}

	headers := append([]string{"Accept", "Origin"}, cfg.AllowedHeaders...)
	for _, h := range requiredAllowHeaders {
		if !slices.Contains(headers, h) {
			headers = append(headers, h)
		}
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     methods,
		AllowHeaders:     headers,
		ExposeHeaders:    exposedHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
