package websocket

import (
	"context"
	"sync"

	"nexora-campus-be/internal/constant"
	"nexora-campus-be/internal/pkg/logger"
)

// Handler processes one inbound frame for a client. emit may be called any
// number of times; ctx ends when the client disconnects.
type Handler func(ctx context.Context, clientID string, raw []byte, emit func(frame interface{}))

// Hub tracks live voice connections by client id. A second connection with
// the same id replaces the first.
type Hub struct {
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex

	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     log,
	}
}

// Run serves register/unregister until ctx ends, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for id, c := range h.clients {
				c.close()
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if prev, ok := h.clients[client.ID]; ok {
				prev.close()
				h.logger.Warn(constant.ModuleVoice, "Client replaced by new connection", map[string]interface{}{"client_id": client.ID})
			}
			h.clients[client.ID] = client
			h.mu.Unlock()
			h.logger.Info(constant.ModuleVoice, "Client connected", map[string]interface{}{"client_id": client.ID})

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.ID]; ok && current == client {
				delete(h.clients, client.ID)
			}
			h.mu.Unlock()
			client.close()
			h.logger.Info(constant.ModuleVoice, "Client disconnected", map[string]interface{}{"client_id": client.ID})
		}
	}
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
		c.close()
	}
}

// Count reports live connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send queues a frame for a connected client. It reports false when the
// client is unknown or its buffer is full.
func (h *Hub) Send(clientID string, frame interface{}) bool {
	h.mu.RLock()
	client, ok := h.clients[clientID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	return client.emit(frame)
}
