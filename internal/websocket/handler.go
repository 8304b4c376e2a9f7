package websocket

import (
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs attaches an upgraded connection to the hub and runs its pumps.
// Blocks until the connection drops; the read pump unregisters on exit, which
// releases every room the connection joined.
func ServeWs(hub *Hub, conn *websocket.Conn, userID uuid.UUID, isAdmin bool, sender Sender) {
	client := &Client{
		Hub:         hub,
		Conn:        conn,
		ID:          uuid.NewString(),
		UserID:      userID,
		IsAdmin:     isAdmin,
		Send:        make(chan []byte, 256),
		sender:      sender,
		rooms:       make(map[string]bool),
		connectedAt: time.Now(),
	}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
