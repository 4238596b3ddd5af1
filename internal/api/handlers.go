package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/lems/statuspanel/internal/logger"
	"github.com/lems/statuspanel/internal/poller"
	"github.com/lems/statuspanel/internal/storage"
)

const defaultHistoryCount = 100

type Handlers struct {
	poller       *poller.Poller
	storage      storage.Storage
	sseHub       *SSEHub
	pollInterval time.Duration
}

func NewHandlers(p *poller.Poller, store storage.Storage, hub *SSEHub, pollInterval time.Duration) *Handlers {
	if hub == nil {
		hub = NewSSEHub()
	}
	return &Handlers{
		poller:       p,
		storage:      store,
		sseHub:       hub,
		pollInterval: pollInterval,
	}
}

// GetSSEHub возвращает hub для рассылки событий
func (h *Handlers) GetSSEHub() *SSEHub {
	return h.sseHub
}

func (h *Handlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// GetStatus возвращает последний снимок состояния
// GET /api/status
func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.poller.Snapshot())
}

// RefreshStatus выполняет внеочередную проверку
// POST /api/status/refresh
func (h *Handlers) RefreshStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.poller.CheckOnce(r.Context()))
}

// GetStatusHistory возвращает последние снимки
// GET /api/status/history?count=100
func (h *Handlers) GetStatusHistory(w http.ResponseWriter, r *http.Request) {
	count := defaultHistoryCount
	if countStr := r.URL.Query().Get("count"); countStr != "" {
		c, err := strconv.Atoi(countStr)
		if err != nil || c <= 0 {
			h.writeError(w, http.StatusBadRequest, "count must be a positive integer")
			return
		}
		count = c
	}

	history, err := h.storage.GetLatest(count)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"snapshots": nonNil(history),
	})
}

// GetStatusHistoryRange возвращает снимки за период
// GET /api/status/history/range?from=...&to=...
func (h *Handlers) GetStatusHistoryRange(w http.ResponseWriter, r *http.Request) {
	to := time.Now()
	from := to.Add(-time.Hour)

	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		t, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid from: "+err.Error())
			return
		}
		from = t
	}

	if toStr := r.URL.Query().Get("to"); toStr != "" {
		t, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid to: "+err.Error())
			return
		}
		to = t
	}

	if to.Before(from) {
		h.writeError(w, http.StatusBadRequest, "to must not be before from")
		return
	}

	history, err := h.storage.GetHistory(from, to)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"from":      from,
		"to":        to,
		"snapshots": nonNil(history),
	})
}

// HandleSSE отдаёт поток снимков состояния
// GET /api/events
func (h *Handlers) HandleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := h.sseHub.AddClient()
	defer h.sseHub.RemoveClient(client)

	logger.Debug("SSE client connected", "remote", r.RemoteAddr, "clients", h.sseHub.ClientCount())

	// Сразу отдаём текущее состояние, чтобы клиент не ждал следующего цикла
	err := writeSSE(w, SSEEvent{
		Type: EventConnected,
		Data: map[string]interface{}{
			"pollInterval": h.pollInterval.Milliseconds(),
			"status":       h.poller.Snapshot(),
		},
		Timestamp: time.Now(),
	})
	if err != nil {
		logger.Warn("SSE write failed", "error", err)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			logger.Debug("SSE client disconnected", "remote", r.RemoteAddr)
			return
		case event := <-client.events:
			if err := writeSSE(w, event); err != nil {
				logger.Warn("SSE write failed", "error", err)
				return
			}
		}
	}
}

// nonNil заменяет nil срез пустым, чтобы в JSON был [] а не null
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
