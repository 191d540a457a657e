package realtime

import (
	"context"
	"net/http"
	"sync"
	"time"

	"eventvote/internal/domain"
	"eventvote/internal/metrics"
	"eventvote/internal/service"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeTimeout = 5 * time.Second

// SnapshotSource builds the state pushed to clients
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*domain.Snapshot, error)
}

// Message is the frame written to live clients
type Message struct {
	Type       string           `json:"type"`
	Collection string           `json:"collection,omitempty"`
	Snapshot   *domain.Snapshot `json:"snapshot"`
}

// Hub keeps the connected live clients and pushes a fresh snapshot to all
// of them whenever the store changes
type Hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]bool
	source   SnapshotSource
	notifier service.ChangeNotifier
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHub creates a hub. An origin list containing "*" accepts any origin.
func NewHub(source SnapshotSource, notifier service.ChangeNotifier, allowedOrigins []string, logger *zap.Logger) *Hub {
	h := &Hub{
		clients:  make(map[*websocket.Conn]bool),
		source:   source,
		notifier: notifier,
		logger:   logger,
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(r.Header.Get("Origin"), allowedOrigins)
		},
	}
	return h
}

func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return true
	}
	for _, o := range allowed {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// Start subscribes to change events and broadcasts until ctx is cancelled.
// The subscription is in place when Start returns.
func (h *Hub) Start(ctx context.Context) {
	events, cancel := h.notifier.Subscribe(ctx)

	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case collection, ok := <-events:
				if !ok {
					return
				}
				// Several changes usually land together; one snapshot covers them
				drain(events)
				h.broadcast(ctx, collection)
			}
		}
	}()
}

func drain(events <-chan service.Collection) {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func (h *Hub) broadcast(ctx context.Context, collection service.Collection) {
	// The snapshot is built under the lock so frames reach every client in store order
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) == 0 {
		return
	}

	snapshot, err := h.source.Snapshot(ctx)
	if err != nil {
		h.logger.Error("Failed to build snapshot", zap.Error(err))
		return
	}
	msg := Message{Type: "update", Collection: string(collection), Snapshot: snapshot}

	for conn := range h.clients {
		if err := write(conn, msg); err != nil {
			h.logger.Debug("Dropping live client after write error", zap.Error(err))
			conn.Close()
			delete(h.clients, conn)
		}
	}
	metrics.LiveClients.Set(float64(len(h.clients)))
}

func write(conn *websocket.Conn, msg Message) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(msg)
}

// ServeWS upgrades the request, sends the current snapshot and keeps the
// client registered until it disconnects
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade error", zap.Error(err))
		return
	}

	if !h.register(r.Context(), conn) {
		conn.Close()
		return
	}
	defer h.unregister(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// register writes the initial snapshot and adds conn to the client set in a
// single critical section, serialized with broadcast
func (h *Hub) register(ctx context.Context, conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	snapshot, err := h.source.Snapshot(ctx)
	if err != nil {
		h.logger.Error("Failed to build snapshot", zap.Error(err))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "snapshot unavailable"),
			time.Now().Add(time.Second))
		return false
	}
	if err := write(conn, Message{Type: "snapshot", Snapshot: snapshot}); err != nil {
		return false
	}
	h.clients[conn] = true
	metrics.LiveClients.Set(float64(len(h.clients)))
	return true
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[conn] {
		delete(h.clients, conn)
		conn.Close()
	}
	metrics.LiveClients.Set(float64(len(h.clients)))
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		conn.Close()
		delete(h.clients, conn)
	}
	metrics.LiveClients.Set(0)
}
