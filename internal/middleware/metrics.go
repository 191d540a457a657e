package middleware

import (
	"net/http"
	"strconv"
	"time"

	"eventvote/internal/metrics"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Metrics collects HTTP request metrics labelled by the matched route
// pattern, so ids in the URL do not explode label cardinality
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := r.Method
		metrics.RequestInProgress.WithLabelValues(method).Inc()
		defer metrics.RequestInProgress.WithLabelValues(method).Dec()

		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		path := routePattern(r)
		code := strconv.Itoa(status)

		metrics.RequestCounter.WithLabelValues(code, method, path).Inc()
		metrics.RequestDuration.WithLabelValues(code, method, path).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
