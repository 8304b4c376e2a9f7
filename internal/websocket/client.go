package websocket

import (
	"context"
	"encoding/json"
	"time"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/entity"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Sender persists a message draft and triggers its broadcast. Implemented by
// the chat service; declared here so the websocket layer does not depend on
// the service package.
type Sender interface {
	SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
}

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// Identity established during the handshake.
	ID      string
	UserID  uuid.UUID
	IsAdmin bool

	// Buffered channel of outbound messages.
	Send chan []byte

	sender Sender

	// rooms and closed are guarded by Hub.mu.
	rooms  map[string]bool
	closed bool

	connectedAt time.Time
}

func (c *Client) Session() *entity.ChatSession {
	return &entity.ChatSession{
		ID:          c.ID,
		UserID:      c.UserID,
		IsAdmin:     c.IsAdmin,
		ConnectedAt: c.connectedAt,
	}
}

// readPump pumps inbound events from the websocket connection: joinRoom
// subscriptions and sendMessage drafts.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("Client", "Unexpected close", map[string]interface{}{
					"session_id": c.ID, "error": err.Error(),
				})
			}
			break
		}
		c.handleEvent(raw)
	}
}

func (c *Client) handleEvent(raw []byte) {
	var event dto.SocketEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		c.Hub.logger.Warn("Client", "Malformed event", map[string]interface{}{
			"session_id": c.ID, "error": err.Error(),
		})
		return
	}

	switch event.Event {
	case dto.EventJoinRoom:
		var room string
		if err := json.Unmarshal(event.Data, &room); err != nil {
			c.Hub.logger.Warn("Client", "Malformed joinRoom payload", map[string]interface{}{
				"session_id": c.ID, "error": err.Error(),
			})
			return
		}
		if !c.mayJoin(room) {
			c.Hub.logger.Warn("Client", "Join rejected", map[string]interface{}{
				"session_id": c.ID, "user_id": c.UserID, "room": room,
			})
			return
		}
		c.Hub.Join(c, room)

	case dto.EventSendMessage:
		var req dto.SendMessageRequest
		if err := json.Unmarshal(event.Data, &req); err != nil {
			c.Hub.logger.Warn("Client", "Malformed sendMessage payload", map[string]interface{}{
				"session_id": c.ID, "error": err.Error(),
			})
			return
		}
		// Persist-then-broadcast runs inside the service; the broadcast the
		// sender sees comes back through its own room subscription.
		if _, err := c.sender.SendMessage(context.Background(), &req); err != nil {
			c.Hub.logger.Warn("Client", "sendMessage failed", map[string]interface{}{
				"session_id": c.ID, "user_id": c.UserID, "error": err.Error(),
			})
		}

	default:
		c.Hub.logger.Warn("Client", "Unknown event", map[string]interface{}{
			"session_id": c.ID, "event": event.Event,
		})
	}
}

// mayJoin enforces room audience: the shared admin room is admin-only and a
// shopper may only join their own room. Admin consoles may peek into any
// shopper room.
func (c *Client) mayJoin(room string) bool {
	if room == entity.RoomAdminSupport {
		return c.IsAdmin
	}
	if c.IsAdmin {
		return true
	}
	return room == entity.UserRoom(c.UserID)
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
