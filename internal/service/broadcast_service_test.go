package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/entity"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type recordingRooms struct {
	mu        sync.Mutex
	published map[string][][]byte
}

func newRecordingRooms() *recordingRooms {
	return &recordingRooms{published: make(map[string][][]byte)}
}

func (r *recordingRooms) Publish(room string, data []byte) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published[room] = append(r.published[room], data)
	return 1
}

func (r *recordingRooms) payloads(room string) [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.published[room]
}

func TestBroadcastDualRoomFanOut(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	rooms := newRecordingRooms()
	topic := "CHAT_MESSAGE_CREATED"

	broadcast := NewBroadcastService(pubSub, topic, rooms, nopLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	assert.NoError(t, broadcast.Consume(ctx))

	userID := uuid.New()
	svc := NewChatService(&fakeMessageRepository{}, pubSub, topic, nil, 10*time.Second, nopLogger{})
	res, err := svc.SendMessage(ctx, draft(userID, entity.RoleUser, "Hello"))
	assert.NoError(t, err)

	userRoom := entity.UserRoom(userID)
	assert.Eventually(t, func() bool {
		return len(rooms.payloads(userRoom)) == 1 &&
			len(rooms.payloads(entity.RoomAdminSupport)) == 1
	}, 2*time.Second, 10*time.Millisecond, "one publish per audience room")

	var event dto.SocketEvent
	assert.NoError(t, event.Unmarshal(rooms.payloads(userRoom)[0]))
	assert.Equal(t, dto.EventReceiveMessage, event.Event)

	var delivered dto.MessageResponse
	assert.NoError(t, event.Decode(&delivered))
	assert.Equal(t, res.Id, delivered.Id, "fan-out carries the persisted record")

	// No other room saw the message.
	rooms.mu.Lock()
	defer rooms.mu.Unlock()
	assert.Len(t, rooms.published, 2)
}
