package middleware

import (
	"net/http"
	"time"

	"github.com/iudanet/authkeeper/internal/server/metrics"
)

// Metrics создает middleware, считающий запросы и их длительность
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			m.ObserveHTTP(r.Method, wrapped.statusCode, time.Since(start))
		})
	}
}
