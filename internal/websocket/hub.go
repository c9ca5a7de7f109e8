package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"mechprop/pkg/contracts/events"
)

const broadcastBuffer = 64

// Hub fans analysis and session events out to connected renderers.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	done    chan struct{}
	running bool

	messagesSent   int64
	droppedClients int64
	totalClients   int64
	logger         *slog.Logger
}

// NewHub creates a hub. Call Run to start dispatching.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With(slog.String("component", "websocket.hub")),
	}
}

// Run dispatches until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.totalClients++
			count := len(h.clients)
			h.mu.Unlock()

			h.logger.Info("client registered",
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr),
				slog.Int("clients", count))
			h.greet(client)

		case client := <-h.unregister:
			h.remove(client, "disconnected")

		case message := <-h.broadcast:
			h.dispatch(message)
		}
	}
}

func (h *Hub) greet(c *Client) {
	data, err := json.Marshal(events.NewMessage(events.MessageTypeConnect, map[string]string{
		"client_id": c.id,
	}))
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *Hub) dispatch(message []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- message:
			h.mu.Lock()
			h.messagesSent++
			h.mu.Unlock()
		default:
			h.remove(c, "send buffer full")
		}
	}
}

func (h *Hub) remove(c *Client, reason string) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	if reason != "disconnected" {
		h.droppedClients++
	}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client unregistered",
		slog.String("client_id", c.id),
		slog.String("reason", reason),
		slog.Duration("connected_for", time.Since(c.connectedAt)),
		slog.Int("clients", count))
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.running = false
	close(h.done)
	h.logger.Info("hub stopped")
}

// Broadcast queues msg for every connected client. It never blocks: when
// the queue is full or the hub has stopped the message is dropped.
func (h *Hub) Broadcast(msg events.WebSocketMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal message",
			slog.String("type", string(msg.Type)),
			slog.String("error", err.Error()))
		return
	}

	select {
	case <-h.done:
	case h.broadcast <- data:
	default:
		h.logger.Warn("broadcast queue full, message dropped", slog.String("type", string(msg.Type)))
	}
}

// Register adds a client. It blocks until the hub accepts it or stops.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} { return h.done }

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats reports counters for the health endpoint.
func (h *Hub) Stats() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return map[string]interface{}{
		"active_clients":  len(h.clients),
		"total_clients":   h.totalClients,
		"messages_sent":   h.messagesSent,
		"dropped_clients": h.droppedClients,
	}
}
