package implementation

import (
	"context"
	"time"

	"support-chat-be/internal/entity"
	"support-chat-be/internal/mapper"
	"support-chat-be/internal/model"
	"support-chat-be/internal/repository/contract"
	"support-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MessageMapper
}

func NewMessageRepository(db *gorm.DB) contract.MessageRepository {
	return &MessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewMessageMapper(),
	}
}

func (r *MessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MessageRepositoryImpl) Create(ctx context.Context, message *entity.Message) error {
	m := r.mapper.MessageToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.MessageToEntity(m)
	return nil
}

func (r *MessageRepositoryImpl) FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Message, error) {
	return r.FindAll(ctx,
		specification.ByUserID{UserID: userID},
		specification.OrderByTimestampAsc{},
	)
}

func (r *MessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	var models []*model.Message
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.MessagesToEntities(models), nil
}

// MarkRead is a single bulk UPDATE, so concurrent calls for the same thread
// commute: whichever runs last finds nothing left to flip.
func (r *MessageRepositoryImpl) MarkRead(ctx context.Context, userID uuid.UUID, roleToMark string) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("user_id = ? AND sender_role = ? AND is_read = ?", userID, roleToMark, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *MessageRepositoryImpl) CountUnread(ctx context.Context, userID uuid.UUID, senderRole string) (int64, error) {
	var count int64
	query := r.applySpecifications(
		r.db.WithContext(ctx).Model(&model.Message{}),
		specification.ByUserID{UserID: userID},
		specification.BySenderRole{Role: senderRole},
		specification.Unread{},
	)
	err := query.Count(&count).Error
	return count, err
}
