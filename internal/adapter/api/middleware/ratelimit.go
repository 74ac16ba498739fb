package middleware

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimit rejects requests above the configured rate with 429. One shared
// token bucket: the ingest surface is in-process tooling, not multi-tenant.
func RateLimit(perSecond float64, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
