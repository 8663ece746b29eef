package middleware

import (
	"net/http"
	"strconv"
	"time"

	"appointment-service/pkg/metrics"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// statusRecorder captures the status code written by the next handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Observe records Prometheus request metrics and writes one access log line
// per request. Routes are labelled by their mux template, never the raw path.
func Observe(collector *metrics.Collector, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			collector.InFlightGauge.Inc()
			defer collector.InFlightGauge.Dec()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := "unmatched"
			if current := mux.CurrentRoute(r); current != nil {
				if tmpl, err := current.GetPathTemplate(); err == nil {
					route = tmpl
				}
			}
			status := strconv.Itoa(rec.status)
			elapsed := time.Since(start)

			collector.RequestsTotal.WithLabelValues(r.Method, route, status).Inc()
			collector.RequestDuration.WithLabelValues(r.Method, route, status).Observe(elapsed.Seconds())

			log.WithFields(logrus.Fields{
				"request_id": RequestIDFromContext(r.Context()),
				"method":     r.Method,
				"route":      route,
				"status":     rec.status,
				"duration":   elapsed.String(),
			}).Info("http request")
		})
	}
}
