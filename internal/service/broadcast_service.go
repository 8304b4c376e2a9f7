package service

import (
	"context"
	"encoding/json"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/entity"
	"support-chat-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

// RoomPublisher fans a payload out to the current subscribers of a named
// room. Satisfied by the websocket hub.
type RoomPublisher interface {
	Publish(room string, data []byte) int
}

type IBroadcastService interface {
	Consume(ctx context.Context) error
}

// broadcastService drains the chat topic and fans each persisted message out
// to its two audiences: the owning shopper's room and the shared admin room.
// A message reaches the bus only after the store accepted it, so everything
// delivered here is provably persisted.
type broadcastService struct {
	subscriber message.Subscriber
	topic      string
	rooms      RoomPublisher
	logger     logger.ILogger
}

func NewBroadcastService(
	subscriber message.Subscriber,
	topic string,
	rooms RoomPublisher,
	log logger.ILogger,
) IBroadcastService {
	return &broadcastService{
		subscriber: subscriber,
		topic:      topic,
		rooms:      rooms,
		logger:     log,
	}
}

func (b *broadcastService) Consume(ctx context.Context) error {
	messages, err := b.subscriber.Subscribe(ctx, b.topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			b.process(msg)
		}
	}()

	return nil
}

func (b *broadcastService) process(msg *message.Message) {
	var res dto.MessageResponse
	if err := json.Unmarshal(msg.Payload, &res); err != nil {
		b.logger.Error("BroadcastService", "Failed to unmarshal message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // malformed payloads are not retriable
		return
	}

	event, err := dto.NewSocketEvent(dto.EventReceiveMessage, res)
	if err != nil {
		msg.Ack()
		return
	}
	payload, err := event.Marshal()
	if err != nil {
		msg.Ack()
		return
	}

	// Dual publish: the shopper widget only ever joins its own room, every
	// admin console sits in the shared room. Empty rooms drop silently.
	userDelivered := b.rooms.Publish(entity.UserRoom(res.UserId), payload)
	adminDelivered := b.rooms.Publish(entity.RoomAdminSupport, payload)

	b.logger.Info("BroadcastService", "Message fanned out", map[string]interface{}{
		"message_id":      res.Id,
		"user_room":       entity.UserRoom(res.UserId),
		"user_delivered":  userDelivered,
		"admin_delivered": adminDelivered,
	})
	msg.Ack()
}
