package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hawkline-systems/hawkline/internal/server/middleware"
)

// NewRouter constructs the API routes with request-id and CORS middleware
// applied.
func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", h.HealthCheck)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/api/v1/signals", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			h.IngestSignal(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/v1/signals/recent", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.RecentSignals(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/v1/analytics", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.Analytics(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/v1/analytics/export", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.AnalyticsExport(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/v1/analytics/trend", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.AnalyticsTrend(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/v1/rules/correlation", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			h.CreateCorrelationRule(w, r)
		case http.MethodGet:
			h.ListCorrelationRules(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/v1/rules/correlation/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			h.DeleteCorrelationRule(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/v1/rules/alerts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			h.CreateAlertRule(w, r)
		case http.MethodGet:
			h.ListAlertRules(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/v1/rules/alerts/", h.UpdateAlertRule)

	mux.HandleFunc("/api/v1/alerts/archive", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.ListArchivedAlerts(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	return middleware.RequestID(middleware.CORS(mux))
}
