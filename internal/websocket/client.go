package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 << 20 // base64 audio
	inboundBuffer  = 8
)

type busyFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Client is a middleman between the websocket connection and the hub.
// Inbound frames are handled one at a time, in arrival order.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	ID   string

	// Buffered channel of outbound messages.
	Send chan []byte

	inbound chan []byte
	handler Handler
	ctx     context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	closed bool
}

func newClient(hub *Hub, conn *websocket.Conn, id string, handler Handler) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		Hub:     hub,
		Conn:    conn,
		ID:      id,
		Send:    make(chan []byte, 64),
		inbound: make(chan []byte, inboundBuffer),
		handler: handler,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// emit serialises frame onto the send buffer. Safe after close.
func (c *Client) emit(frame interface{}) bool {
	data, err := json.Marshal(frame)
	if err != nil {
		log.Printf("[ERROR] [VOICE] marshal frame for %s: %v", c.ID, err)
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		log.Printf("[WARN] [VOICE] send buffer full for %s, dropping frame", c.ID)
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	close(c.Send)
}

// readPump pumps frames from the websocket connection to processLoop.
func (c *Client) readPump() {
	defer func() {
		close(c.inbound)
		c.Hub.leave(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WARN] [VOICE] read error for %s: %v", c.ID, err)
			}
			return
		}
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))

		select {
		case c.inbound <- message:
		default:
			c.emit(busyFrame{Type: "error", Message: "Still processing previous audio, please wait"})
		}
	}
}

func (c *Client) processLoop() {
	for raw := range c.inbound {
		if c.ctx.Err() != nil {
			continue
		}
		c.handler(c.ctx, c.ID, raw, func(frame interface{}) { c.emit(frame) })
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// One JSON frame per websocket message; clients parse each separately.
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
