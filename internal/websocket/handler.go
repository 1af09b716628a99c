package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs handles websocket requests from an authenticated admin session.
func ServeWs(hub *Hub, c *websocket.Conn, actorID uuid.UUID) {
	client := &Client{Hub: hub, Conn: c, ActorID: actorID, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
