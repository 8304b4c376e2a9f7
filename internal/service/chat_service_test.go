package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/entity"
	"support-chat-be/internal/repository/specification"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// fakeMessageRepository is an in-memory stand-in for the gorm store.
type fakeMessageRepository struct {
	messages  []*entity.Message
	createErr error
	markErr   error
}

func (f *fakeMessageRepository) Create(ctx context.Context, msg *entity.Message) error {
	if f.createErr != nil {
		return f.createErr
	}
	stored := *msg
	f.messages = append(f.messages, &stored)
	return nil
}

func (f *fakeMessageRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Message, error) {
	var out []*entity.Message
	for _, m := range f.messages {
		if m.UserId == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	return f.messages, nil
}

func (f *fakeMessageRepository) MarkRead(ctx context.Context, userID uuid.UUID, roleToMark string) (int64, error) {
	if f.markErr != nil {
		return 0, f.markErr
	}
	now := time.Now()
	var modified int64
	for _, m := range f.messages {
		if m.UserId == userID && m.SenderRole == roleToMark && !m.IsRead {
			m.IsRead = true
			m.ReadAt = &now
			modified++
		}
	}
	return modified, nil
}

func (f *fakeMessageRepository) CountUnread(ctx context.Context, userID uuid.UUID, senderRole string) (int64, error) {
	var count int64
	for _, m := range f.messages {
		if m.UserId == userID && m.SenderRole == senderRole && !m.IsRead {
			count++
		}
	}
	return count, nil
}

type fakePublisher struct {
	published []*message.Message
	err       error
}

func (f *fakePublisher) Publish(topic string, messages ...*message.Message) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, messages...)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func newTestService(repo *fakeMessageRepository, pub *fakePublisher) IChatService {
	return NewChatService(repo, pub, "CHAT_MESSAGE_CREATED", nil, 10*time.Second, nopLogger{})
}

func draft(userID uuid.UUID, role, text string) *dto.SendMessageRequest {
	return &dto.SendMessageRequest{
		SenderId:    userID,
		SenderName:  "Shopper",
		SenderEmail: "shopper@example.com",
		SenderRole:  role,
		Message:     text,
		UserId:      userID,
	}
}

func TestSendMessageAssignsIdAndTimestamp(t *testing.T) {
	repo := &fakeMessageRepository{}
	pub := &fakePublisher{}
	svc := newTestService(repo, pub)

	res, err := svc.SendMessage(context.Background(), draft(uuid.New(), entity.RoleUser, "Hello"))

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, res.Id)
	assert.False(t, res.Timestamp.IsZero())
	assert.False(t, res.IsRead)
	assert.Equal(t, entity.RoleUser, res.SenderRole)
}

func TestSendMessageRejectsBlankText(t *testing.T) {
	repo := &fakeMessageRepository{}
	pub := &fakePublisher{}
	svc := newTestService(repo, pub)

	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := svc.SendMessage(context.Background(), draft(uuid.New(), entity.RoleUser, text))
		assert.ErrorIs(t, err, ErrValidation)
	}
	assert.Empty(t, repo.messages, "nothing persisted")
	assert.Empty(t, pub.published, "nothing broadcast")
}

func TestSendMessageRejectsMissingFields(t *testing.T) {
	repo := &fakeMessageRepository{}
	pub := &fakePublisher{}
	svc := newTestService(repo, pub)

	req := draft(uuid.New(), entity.RoleUser, "hi")
	req.UserId = uuid.Nil
	_, err := svc.SendMessage(context.Background(), req)
	assert.ErrorIs(t, err, ErrValidation)

	req = draft(uuid.New(), "moderator", "hi")
	_, err = svc.SendMessage(context.Background(), req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSendMessagePublishesStoredRecord(t *testing.T) {
	repo := &fakeMessageRepository{}
	pub := &fakePublisher{}
	svc := newTestService(repo, pub)

	res, err := svc.SendMessage(context.Background(), draft(uuid.New(), entity.RoleUser, "Hello"))
	assert.NoError(t, err)

	assert.Len(t, pub.published, 1)
	var published dto.MessageResponse
	assert.NoError(t, json.Unmarshal(pub.published[0].Payload, &published))
	assert.Equal(t, res.Id, published.Id, "broadcast carries the store-assigned id")
	assert.Equal(t, res.Timestamp.Unix(), published.Timestamp.Unix())
}

func TestSendMessageStoreFailureSuppressesBroadcast(t *testing.T) {
	repo := &fakeMessageRepository{createErr: errors.New("connection refused")}
	pub := &fakePublisher{}
	svc := newTestService(repo, pub)

	_, err := svc.SendMessage(context.Background(), draft(uuid.New(), entity.RoleUser, "Hello"))

	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Empty(t, pub.published, "never fan out a message that was not durably persisted")
}

func TestSendMessagePublishFailureStillSucceeds(t *testing.T) {
	repo := &fakeMessageRepository{}
	pub := &fakePublisher{err: errors.New("bus closed")}
	svc := newTestService(repo, pub)

	res, err := svc.SendMessage(context.Background(), draft(uuid.New(), entity.RoleUser, "Hello"))

	assert.NoError(t, err, "persisted message wins; delivery is best-effort")
	assert.NotNil(t, res)
	assert.Len(t, repo.messages, 1)
}

func TestMarkAsReadFlipsOnlyOppositeRole(t *testing.T) {
	userID := uuid.New()
	repo := &fakeMessageRepository{}
	pub := &fakePublisher{}
	svc := newTestService(repo, pub)

	_, err := svc.SendMessage(context.Background(), draft(userID, entity.RoleUser, "help"))
	assert.NoError(t, err)
	adminReply := draft(userID, entity.RoleAdmin, "on it")
	adminReply.SenderId = uuid.New()
	_, err = svc.SendMessage(context.Background(), adminReply)
	assert.NoError(t, err)

	modified, err := svc.MarkAsRead(context.Background(), userID, entity.RoleAdmin)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), modified)

	for _, m := range repo.messages {
		if m.SenderRole == entity.RoleUser {
			assert.True(t, m.IsRead)
			assert.NotNil(t, m.ReadAt)
		} else {
			assert.False(t, m.IsRead, "the admin's own reply stays untouched")
		}
	}
}

func TestMarkAsReadIsIdempotent(t *testing.T) {
	userID := uuid.New()
	repo := &fakeMessageRepository{}
	svc := newTestService(repo, &fakePublisher{})

	_, err := svc.SendMessage(context.Background(), draft(userID, entity.RoleUser, "help"))
	assert.NoError(t, err)

	first, err := svc.MarkAsRead(context.Background(), userID, entity.RoleAdmin)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), first)

	second, err := svc.MarkAsRead(context.Background(), userID, entity.RoleAdmin)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), second)
}

func TestMarkAsReadRejectsUnknownRole(t *testing.T) {
	svc := newTestService(&fakeMessageRepository{}, &fakePublisher{})

	_, err := svc.MarkAsRead(context.Background(), uuid.New(), "bot")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetTicketsBuildsInbox(t *testing.T) {
	userID := uuid.New()
	repo := &fakeMessageRepository{}
	svc := newTestService(repo, &fakePublisher{})

	_, err := svc.SendMessage(context.Background(), draft(userID, entity.RoleUser, "Hello"))
	assert.NoError(t, err)

	tickets, err := svc.GetTickets(context.Background())
	assert.NoError(t, err)
	assert.Len(t, tickets, 1)
	assert.Equal(t, userID, tickets[0].UserId)
	assert.Equal(t, "Hello", tickets[0].LastMessage)
	assert.Equal(t, 1, tickets[0].UnreadCount)
}

func TestGetUnreadCountForShopperCountsAdminReplies(t *testing.T) {
	userID := uuid.New()
	repo := &fakeMessageRepository{}
	svc := newTestService(repo, &fakePublisher{})

	_, err := svc.SendMessage(context.Background(), draft(userID, entity.RoleUser, "hi"))
	assert.NoError(t, err)
	reply := draft(userID, entity.RoleAdmin, "hello back")
	reply.SenderId = uuid.New()
	_, err = svc.SendMessage(context.Background(), reply)
	assert.NoError(t, err)

	count, err := svc.GetUnreadCount(context.Background(), userID, entity.RoleUser)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = svc.GetUnreadCount(context.Background(), userID, entity.RoleAdmin)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGetUserMessagesOrderedByStore(t *testing.T) {
	userID := uuid.New()
	repo := &fakeMessageRepository{}
	svc := newTestService(repo, &fakePublisher{})

	_, err := svc.SendMessage(context.Background(), draft(userID, entity.RoleUser, "first"))
	assert.NoError(t, err)
	_, err = svc.SendMessage(context.Background(), draft(userID, entity.RoleUser, "second"))
	assert.NoError(t, err)

	messages, err := svc.GetUserMessages(context.Background(), userID)
	assert.NoError(t, err)
	assert.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Message)
	assert.Equal(t, "second", messages[1].Message)
}
