package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs runs a voice connection until the peer goes away.
func ServeWs(hub *Hub, c *websocket.Conn, clientID string, handler Handler) {
	client := newClient(hub, c, clientID, handler)
	if !hub.join(client) {
		c.Close()
		return
	}

	go client.writePump()
	go client.processLoop()
	client.readPump() // fiber/websocket closes the conn when the handler returns
}
