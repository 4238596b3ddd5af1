package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/lems/statuspanel/internal/health"
	"github.com/lems/statuspanel/internal/logger"
)

// Типы SSE событий
const (
	EventConnected = "connected"
	EventStatus    = "status"
)

// SSEEvent событие для отправки клиентам
type SSEEvent struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// SSEClient подключённый клиент
type SSEClient struct {
	events chan SSEEvent
}

// SSEHub рассылает события всем подключённым клиентам
type SSEHub struct {
	mu      sync.RWMutex
	clients map[*SSEClient]struct{}
}

// NewSSEHub создаёт новый hub
func NewSSEHub() *SSEHub {
	return &SSEHub{
		clients: make(map[*SSEClient]struct{}),
	}
}

// AddClient регистрирует нового клиента
func (h *SSEHub) AddClient() *SSEClient {
	client := &SSEClient{
		events: make(chan SSEEvent, 16),
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	return client
}

// RemoveClient удаляет клиента
func (h *SSEHub) RemoveClient(client *SSEClient) {
	h.mu.Lock()
	delete(h.clients, client)
	h.mu.Unlock()
}

// ClientCount возвращает количество подключённых клиентов
func (h *SSEHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast отправляет событие всем клиентам.
// Медленный клиент с заполненным буфером пропускает событие.
func (h *SSEHub) Broadcast(event SSEEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.events <- event:
		default:
			logger.Debug("SSE client buffer full, event dropped", "type", event.Type)
		}
	}
}

// BroadcastSnapshot отправляет снимок состояния всем клиентам
func (h *SSEHub) BroadcastSnapshot(snap health.Snapshot) {
	h.Broadcast(SSEEvent{
		Type:      EventStatus,
		Data:      snap,
		Timestamp: time.Now(),
	})
}

// writeSSE записывает событие в формате text/event-stream
func writeSSE(w http.ResponseWriter, event SSEEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
