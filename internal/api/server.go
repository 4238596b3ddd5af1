package api

import (
	"net/http"
)

// NewServer собирает маршруты API. metrics может быть nil.
func NewServer(h *Handlers, metrics http.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/status", h.GetStatus)
	mux.HandleFunc("POST /api/status/refresh", h.RefreshStatus)
	mux.HandleFunc("GET /api/status/history", h.GetStatusHistory)
	mux.HandleFunc("GET /api/status/history/range", h.GetStatusHistoryRange)
	mux.HandleFunc("GET /api/events", h.HandleSSE)

	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	return mux
}
