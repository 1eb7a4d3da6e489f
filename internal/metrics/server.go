package metrics

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server builds the node's ambient HTTP surface: /health for a liveness
// probe and /metrics for Prometheus scraping. It carries no protocol state
// of its own — health is a static 200, metrics come from the promauto
// registry populated by this package's gauges and counters.
func Server() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
