package entity

import (
	"time"

	"github.com/google/uuid"
)

// Sender roles. Every message is tagged with the side of the conversation
// that authored it; the shopper's UserId stays the partition key either way.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Message is one chat utterance. Immutable after creation except for the
// read flag, which only ever flips false -> true.
type Message struct {
	Id          uuid.UUID
	SenderId    uuid.UUID
	SenderName  string
	SenderEmail string
	SenderRole  string
	Message     string
	UserId      uuid.UUID
	IsRead      bool
	ReadAt      *time.Time
	Timestamp   time.Time
}

// OppositeRole returns the counterpart of a reader role. A reading admin
// consumes shopper messages and vice versa.
func OppositeRole(role string) string {
	if role == RoleUser {
		return RoleAdmin
	}
	return RoleUser
}
