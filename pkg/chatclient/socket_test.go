package chatclient

import (
	"testing"
	"time"

	"support-chat-be/internal/dto"

	"github.com/stretchr/testify/assert"
)

func TestForwardUnblocksOnClose(t *testing.T) {
	s := &Socket{
		events: make(chan dto.SocketEvent, 1),
		done:   make(chan struct{}),
	}

	assert.True(t, s.forward(dto.SocketEvent{Event: dto.EventReceiveMessage}))

	// Buffer is full and nobody is draining; a close must release the
	// blocked forward instead of pinning the read goroutine forever.
	result := make(chan bool, 1)
	go func() {
		result <- s.forward(dto.SocketEvent{Event: dto.EventReceiveMessage})
	}()

	close(s.done)

	select {
	case forwarded := <-result:
		assert.False(t, forwarded)
	case <-time.After(time.Second):
		t.Fatal("forward still blocked after close")
	}
}
