package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatSession is the server-side record of one live websocket connection:
// which identity it belongs to, which rooms it joined and when it attached.
// It is ephemeral and evicted when the connection drops.
type ChatSession struct {
	ID          string
	UserID      uuid.UUID
	IsAdmin     bool
	Rooms       []string
	ConnectedAt time.Time
}
