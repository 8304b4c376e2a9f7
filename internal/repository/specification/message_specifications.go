package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByUserID scopes a query to one shopper's conversation thread.
type ByUserID struct {
	UserID uuid.UUID
}

func (s ByUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// BySenderRole scopes a query to messages authored by one side.
type BySenderRole struct {
	Role string
}

func (s BySenderRole) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("sender_role = ?", s.Role)
}

// Unread scopes a query to messages not yet read.
type Unread struct{}

func (s Unread) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_read = ?", false)
}

// OrderByTimestampAsc applies the authoritative display ordering.
type OrderByTimestampAsc struct{}

func (s OrderByTimestampAsc) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("timestamp ASC")
}
