package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type handlers struct {
	logger *slog.Logger
	source ReportSource
}

func (h *handlers) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.healthz)
	mux.HandleFunc("/api/v1/report", h.report)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// report serves the monitor's latest snapshot. Until the first build
// completes there is nothing to serve, which is a 503, not an empty
// report.
func (h *handlers) report(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rep, ok := h.source.Latest()
	if !ok {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no health report built yet"})
		return
	}
	h.writeJSON(w, http.StatusOK, rep)
}

func (h *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("write response", slog.Any("error", err))
	}
}
