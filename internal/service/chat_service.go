package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/entity"
	"support-chat-be/internal/mapper"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/repository/contract"
	"support-chat-be/internal/ticket"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const ticketCacheKey = "chat:tickets"

type IChatService interface {
	SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	GetUserMessages(ctx context.Context, userID uuid.UUID) ([]dto.MessageResponse, error)
	GetTickets(ctx context.Context) ([]dto.TicketResponse, error)
	MarkAsRead(ctx context.Context, userID uuid.UUID, readerRole string) (int64, error)
	GetUnreadCount(ctx context.Context, userID uuid.UUID, readerRole string) (int64, error)
}

type chatService struct {
	repo      contract.MessageRepository
	mapper    *mapper.MessageMapper
	validate  *validator.Validate
	publisher message.Publisher
	topic     string
	rdb       *redis.Client
	cacheTTL  time.Duration
	logger    logger.ILogger
}

func NewChatService(
	repo contract.MessageRepository,
	publisher message.Publisher,
	topic string,
	rdb *redis.Client,
	cacheTTL time.Duration,
	log logger.ILogger,
) IChatService {
	return &chatService{
		repo:      repo,
		mapper:    mapper.NewMessageMapper(),
		validate:  validator.New(),
		publisher: publisher,
		topic:     topic,
		rdb:       rdb,
		cacheTTL:  cacheTTL,
		logger:    log,
	}
}

// SendMessage validates the draft, persists it with a store-assigned id and
// timestamp, then publishes the stored record for room fan-out. The publish
// happens strictly after the append succeeds: a message that was not durably
// persisted is never broadcast.
func (s *chatService) SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: message must not be blank", ErrValidation)
	}

	msg := &entity.Message{
		Id:          uuid.New(),
		SenderId:    req.SenderId,
		SenderName:  req.SenderName,
		SenderEmail: req.SenderEmail,
		SenderRole:  req.SenderRole,
		Message:     req.Message,
		UserId:      req.UserId,
		IsRead:      false,
		Timestamp:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		s.logger.Error("ChatService", "Failed to persist message", map[string]interface{}{
			"user_id": req.UserId, "error": err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	s.invalidateTicketCache(ctx)

	res := s.mapper.MessageToResponse(msg)
	payload, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(s.topic, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		// The message is durable; subscribers recover it on their next
		// fetch. Delivery here is best-effort only.
		s.logger.Warn("ChatService", "Broadcast publish failed", map[string]interface{}{
			"message_id": msg.Id, "error": err.Error(),
		})
	}

	return &res, nil
}

func (s *chatService) GetUserMessages(ctx context.Context, userID uuid.UUID) ([]dto.MessageResponse, error) {
	messages, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return s.mapper.MessagesToResponses(messages), nil
}

// GetTickets aggregates every conversation into the admin inbox. The result
// is cached briefly in Redis since every console refresh hits this path; the
// cache degrades to a direct rebuild when Redis is absent.
func (s *chatService) GetTickets(ctx context.Context) ([]dto.TicketResponse, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, ticketCacheKey).Bytes()
		if err == nil {
			var tickets []dto.TicketResponse
			if err := json.Unmarshal(cached, &tickets); err == nil {
				return tickets, nil
			}
		}
	}

	messages, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	tickets := ticket.Build(s.mapper.MessagesToResponses(messages))

	if s.rdb != nil {
		// A rebuild racing a concurrent invalidation can write back a
		// snapshot read just before the Del. The entry expires after
		// cacheTTL, so a stale unread count survives at most that long.
		if payload, err := json.Marshal(tickets); err == nil {
			if err := s.rdb.Set(ctx, ticketCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("ChatService", "Ticket cache write failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}

	return tickets, nil
}

// MarkAsRead flips the unread messages authored by the opposite role of the
// reader. Idempotent: a second call with nothing newly unread reports zero.
func (s *chatService) MarkAsRead(ctx context.Context, userID uuid.UUID, readerRole string) (int64, error) {
	if readerRole != entity.RoleUser && readerRole != entity.RoleAdmin {
		return 0, fmt.Errorf("%w: senderRole must be user or admin", ErrValidation)
	}

	modified, err := s.repo.MarkRead(ctx, userID, entity.OppositeRole(readerRole))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if modified > 0 {
		s.invalidateTicketCache(ctx)
	}
	return modified, nil
}

// GetUnreadCount reports how many counterpart messages the reader has not
// seen yet; backs the widget badge.
func (s *chatService) GetUnreadCount(ctx context.Context, userID uuid.UUID, readerRole string) (int64, error) {
	if readerRole != entity.RoleUser && readerRole != entity.RoleAdmin {
		return 0, fmt.Errorf("%w: role must be user or admin", ErrValidation)
	}

	count, err := s.repo.CountUnread(ctx, userID, entity.OppositeRole(readerRole))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return count, nil
}

func (s *chatService) invalidateTicketCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, ticketCacheKey).Err(); err != nil {
		s.logger.Warn("ChatService", "Ticket cache invalidation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
