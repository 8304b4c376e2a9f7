package websocket

import (
	"sync"

	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/repository/memory"
)

// Hub is the room-based broadcast channel. Rooms are plain names: one
// "user-{id}" room per shopper plus the shared admin room. Membership is
// transient, tied to a live connection; delivery is best-effort with no
// queuing for absent subscribers.
type Hub struct {
	// rooms: room name -> subscriber set
	rooms map[string]map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Live session registry, kept in step with register/join/unregister
	sessions *memory.SessionRepository

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(sessions *memory.SessionRepository, log logger.ILogger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		sessions:   sessions,
		logger:     log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.sessions.Save(client.Session())
			h.logger.Info("Hub", "Client registered", map[string]interface{}{
				"session_id": client.ID,
				"user_id":    client.UserID,
				"is_admin":   client.IsAdmin,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if !client.closed {
				client.closed = true
				close(client.Send)
			}
			for room := range client.rooms {
				h.leaveLocked(room, client)
			}
			client.rooms = make(map[string]bool)
			h.mu.Unlock()

			h.sessions.Delete(client.ID)
			h.logger.Info("Hub", "Client unregistered", map[string]interface{}{
				"session_id": client.ID,
				"user_id":    client.UserID,
			})
		}
	}
}

// Join subscribes the client to a room. Joining the same room twice is a
// no-op, so duplicate joinRoom events after a client-side re-render cannot
// double deliveries.
func (h *Hub) Join(client *Client, room string) {
	h.mu.Lock()
	subscribers := h.rooms[room]
	if subscribers == nil {
		subscribers = make(map[*Client]bool)
		h.rooms[room] = subscribers
	}
	already := subscribers[client]
	subscribers[client] = true
	client.rooms[room] = true
	h.mu.Unlock()

	if already {
		return
	}
	h.sessions.AddRoom(client.ID, room)
	h.logger.Info("Hub", "Client joined room", map[string]interface{}{
		"session_id": client.ID,
		"room":       room,
	})
}

// Publish delivers data to every current subscriber of the room and reports
// how many received it. An empty room is a silent no-op, never an error.
//
// Sends happen under the read lock: Run closes a Send channel only under the
// write lock, so a send here can never race the close. The select never
// blocks, which keeps holding the lock across the loop safe.
func (h *Hub) Publish(room string, data []byte) int {
	h.mu.RLock()
	delivered := 0
	var slow []*Client
	for client := range h.rooms[room] {
		if client.closed {
			continue
		}
		select {
		case client.Send <- data:
			delivered++
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	// Slow consumer: drop the connection rather than block the broadcast
	// for everyone else. The client recovers by refetching on reconnect.
	// Unregister needs the write lock, so it must happen after the RUnlock.
	for _, client := range slow {
		h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{
			"session_id": client.ID,
			"room":       room,
		})
		h.unregister <- client
	}
	return delivered
}

// SubscriberCount reports the current size of a room.
func (h *Hub) SubscriberCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// SessionCount reports how many connections are currently registered.
func (h *Hub) SessionCount() int {
	return h.sessions.Count()
}

func (h *Hub) leaveLocked(room string, client *Client) {
	subscribers := h.rooms[room]
	if subscribers == nil {
		return
	}
	delete(subscribers, client)
	if len(subscribers) == 0 {
		delete(h.rooms, room)
	}
}
