package model

import (
	"time"

	"github.com/google/uuid"
)

// Message is the persistence shape of a chat message. user_id partitions
// messages into conversations; the composite unread index backs both the
// ticket unread rollup and the bulk mark-as-read update.
type Message struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	SenderId    uuid.UUID `gorm:"type:uuid;not null"`
	SenderName  string    `gorm:"type:varchar(100)"`
	SenderEmail string    `gorm:"type:varchar(255)"`
	SenderRole  string    `gorm:"type:varchar(10);not null;default:'user'"`
	Message     string    `gorm:"type:text;not null"`
	UserId      uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_user_ts,priority:1;index:idx_messages_user_unread,priority:1"`
	IsRead      bool      `gorm:"default:false;index:idx_messages_user_unread,priority:2"`
	ReadAt      *time.Time
	Timestamp   time.Time `gorm:"not null;index:idx_messages_user_ts,priority:2"`
}
