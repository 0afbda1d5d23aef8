package server

import (
	"net/http"
	"strconv"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// rateLimit rejects requests once the shared token bucket is empty.
func (h *handler) rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				h.metrics.limited.Inc()
				w.Header().Set("Retry-After", "1")
				h.respondErrorWithOp(w, http.StatusTooManyRequests, "rate limit exceeded", "server.rateLimit")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// instrument records request counts and latency for one endpoint.
func (h *handler) instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		h.metrics.requests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
		h.metrics.latency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
		h.logger.Debug("handled request",
			zap.String("op", "server.instrument"),
			zap.String("endpoint", endpoint),
			zap.String("requestId", chimiddleware.GetReqID(r.Context())),
			zap.Int("status", status),
			zap.Duration("duration", elapsed),
		)
	}
}
