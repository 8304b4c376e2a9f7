package chatclient

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"support-chat-be/internal/dto"

	"github.com/fasthttp/websocket"
)

// Socket is one live websocket connection to the chat backend. Inbound
// receiveMessage events are surfaced on Events; writes are serialized so the
// session can send from multiple goroutines.
type Socket struct {
	conn   *websocket.Conn
	events chan dto.SocketEvent
	done   chan struct{}

	mu     sync.Mutex
	closed bool
}

// Dial opens the websocket endpoint, authenticating with the client's token
// via the query string the same way the browser widget does.
func (c *Client) Dial(ctx context.Context) (*Socket, error) {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) +
		"/api/chat/ws?token=" + url.QueryEscape(c.token)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, err
	}

	s := &Socket{
		conn:   conn,
		events: make(chan dto.SocketEvent, 32),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

// Join subscribes this connection to a room. The server enforces audience
// rules; an unauthorized join is silently dropped there.
func (s *Socket) Join(room string) error {
	return s.write(dto.EventJoinRoom, room)
}

// Send submits a draft over the socket instead of REST. The persisted copy
// comes back as a receiveMessage event on the joined room.
func (s *Socket) Send(req *dto.SendMessageRequest) error {
	return s.write(dto.EventSendMessage, req)
}

// Events delivers server pushes until the connection drops, then closes.
func (s *Socket) Events() <-chan dto.SocketEvent {
	return s.events
}

func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.done)
	s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return s.conn.Close()
}

func (s *Socket) write(event string, data interface{}) error {
	evt, err := dto.NewSocketEvent(event, data)
	if err != nil {
		return err
	}
	payload, err := evt.Marshal()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

func (s *Socket) readLoop() {
	defer close(s.events)
	for {
		var event dto.SocketEvent
		if err := s.conn.ReadJSON(&event); err != nil {
			return
		}
		if !s.forward(event) {
			return
		}
	}
}

// forward hands an event to the consumer. A consumer that stopped draining
// Events must not pin this goroutine past Close, so the send gives up once
// the socket is closed.
func (s *Socket) forward(event dto.SocketEvent) bool {
	select {
	case s.events <- event:
		return true
	case <-s.done:
		return false
	}
}
