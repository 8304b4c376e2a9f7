package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SendMessageRequest is the draft a client submits, either via POST /api/chat
// or the sendMessage websocket event. Id and timestamp are never accepted
// from the client; the store assigns both.
type SendMessageRequest struct {
	SenderId    uuid.UUID `json:"senderId" validate:"required"`
	SenderName  string    `json:"senderName"`
	SenderEmail string    `json:"senderEmail"`
	SenderRole  string    `json:"senderRole" validate:"required,oneof=user admin"`
	Message     string    `json:"message" validate:"required"`
	UserId      uuid.UUID `json:"userId" validate:"required"`
}

// MessageResponse is the wire shape of a persisted message. The same shape is
// returned by the REST endpoints and carried inside receiveMessage events.
type MessageResponse struct {
	Id          uuid.UUID  `json:"id"`
	SenderId    uuid.UUID  `json:"senderId"`
	SenderName  string     `json:"senderName"`
	SenderEmail string     `json:"senderEmail"`
	SenderRole  string     `json:"senderRole"`
	Message     string     `json:"message"`
	UserId      uuid.UUID  `json:"userId"`
	IsRead      bool       `json:"isRead"`
	ReadAt      *time.Time `json:"readAt"`
	Timestamp   time.Time  `json:"timestamp"`
}

// TicketResponse is the rolled-up view of one shopper's conversation. It is
// derived, never stored; see internal/ticket.
type TicketResponse struct {
	UserId          uuid.UUID         `json:"userId"`
	UserName        string            `json:"userName"`
	UserEmail       string            `json:"userEmail"`
	Messages        []MessageResponse `json:"messages"`
	LastMessage     string            `json:"lastMessage"`
	LastMessageTime time.Time         `json:"lastMessageTime"`
	UnreadCount     int               `json:"unreadCount"`
}

// MarkAsReadRequest names the role doing the reading; the store flips the
// opposite role's unread messages.
type MarkAsReadRequest struct {
	SenderRole string `json:"senderRole" validate:"required,oneof=user admin"`
}

type MarkAsReadResponse struct {
	ModifiedCount int64 `json:"modifiedCount"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unreadCount"`
}

// Websocket event names. Client to server: joinRoom, sendMessage. Server to
// client: receiveMessage.
const (
	EventJoinRoom       = "joinRoom"
	EventSendMessage    = "sendMessage"
	EventReceiveMessage = "receiveMessage"
)

// SocketEvent is the envelope every websocket frame uses in both directions.
// Data is kept raw so each event can carry its own payload shape.
type SocketEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func NewSocketEvent(event string, data interface{}) (*SocketEvent, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &SocketEvent{Event: event, Data: raw}, nil
}

func (e *SocketEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func (e *SocketEvent) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, e)
}

// Decode unpacks the event payload into the shape the event name implies.
func (e *SocketEvent) Decode(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}
