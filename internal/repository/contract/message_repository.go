package contract

import (
	"context"

	"support-chat-be/internal/entity"
	"support-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

// MessageRepository is the Message Store contract. Create is the only write
// that introduces new rows; MarkRead is the only mutation of existing rows
// and must be atomic across the set it flips.
type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Message, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
	// MarkRead flips is_read/read_at on every unread message of the thread
	// authored by roleToMark and reports how many rows changed. Zero is not
	// an error; the operation is idempotent.
	MarkRead(ctx context.Context, userID uuid.UUID, roleToMark string) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID, senderRole string) (int64, error)
}
