package chatclient

import (
	"sync"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/entity"
	"support-chat-be/internal/ticket"

	"github.com/google/uuid"
)

// ShopperSession mirrors the widget state for one shopper: their own
// conversation, the unread badge shown while the widget is collapsed, and the
// composer draft. It is a pure state machine; the caller owns the transport.
type ShopperSession struct {
	mu sync.Mutex

	userID   uuid.UUID
	open     bool
	messages []dto.MessageResponse
	seen     map[uuid.UUID]bool
	unread   int
	acked    map[uuid.UUID]bool
	draft    string
}

func NewShopperSession(userID uuid.UUID) *ShopperSession {
	return &ShopperSession{
		userID: userID,
		seen:   make(map[uuid.UUID]bool),
		acked:  make(map[uuid.UUID]bool),
	}
}

// Reset replaces the local view with freshly fetched history. Called after
// the initial load and on every reconnect, since pushes may have been missed
// while the socket was down.
func (s *ShopperSession) Reset(history []dto.MessageResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket.SortMessages(history)
	s.messages = history
	s.seen = make(map[uuid.UUID]bool)
	for _, msg := range history {
		s.seen[msg.Id] = true
		if msg.IsRead {
			s.acked[msg.Id] = true
		}
	}
	s.recountLocked()
}

// Apply folds one pushed message into the view. Messages belonging to other
// shoppers and duplicates of already seen ids are ignored. Returns whether
// the message was accepted.
func (s *ShopperSession) Apply(msg dto.MessageResponse) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.UserId != s.userID {
		return false
	}
	if s.seen[msg.Id] {
		return false
	}
	s.seen[msg.Id] = true
	s.messages = append(s.messages, msg)
	s.recountLocked()
	return true
}

// SetOpen tracks whether the widget is expanded. Opening clears the badge;
// the store-side flip happens separately via TakeReadIDs plus a mark-as-read
// call.
func (s *ShopperSession) SetOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = open
}

// Unread is the badge count: counterpart messages not yet acknowledged.
func (s *ShopperSession) Unread() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open {
		return 0
	}
	return s.unread
}

// TakeReadIDs returns the admin messages that still need a mark-as-read call
// and acknowledges them locally, so each message triggers at most one call.
// Empty unless the widget is open.
func (s *ShopperSession) TakeReadIDs() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil
	}
	var ids []uuid.UUID
	for _, msg := range s.messages {
		if msg.SenderRole == entity.RoleAdmin && !s.acked[msg.Id] {
			s.acked[msg.Id] = true
			ids = append(ids, msg.Id)
		}
	}
	s.recountLocked()
	return ids
}

func (s *ShopperSession) Messages() []dto.MessageResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]dto.MessageResponse, len(s.messages))
	copy(out, s.messages)
	return out
}

// Draft is the composer text. It survives a failed send; the caller clears
// it only after the backend confirmed the message.
func (s *ShopperSession) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

func (s *ShopperSession) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
}

func (s *ShopperSession) ClearDraft() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = ""
}

func (s *ShopperSession) recountLocked() {
	count := 0
	for _, msg := range s.messages {
		if msg.SenderRole == entity.RoleAdmin && !s.acked[msg.Id] {
			count++
		}
	}
	s.unread = count
}

// AdminSession mirrors the console state: the ticket inbox, the currently
// opened conversation, and a dedup set so each ticket fires mark-as-read only
// once until a new shopper message arrives.
type AdminSession struct {
	mu sync.Mutex

	tickets  []dto.TicketResponse
	selected uuid.UUID
	marked   map[uuid.UUID]bool
}

func NewAdminSession() *AdminSession {
	return &AdminSession{marked: make(map[uuid.UUID]bool)}
}

// Reset replaces the inbox with a freshly fetched snapshot.
func (a *AdminSession) Reset(tickets []dto.TicketResponse) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tickets = tickets
}

// Apply folds one pushed message into the inbox. A new shopper message
// re-arms mark-as-read for that conversation.
func (a *AdminSession) Apply(msg dto.MessageResponse) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.tickets = ticket.Merge(a.tickets, msg)
	if msg.SenderRole == entity.RoleUser {
		delete(a.marked, msg.UserId)
	}
}

// Select opens a conversation and returns its ticket, or nil when the
// shopper has no thread yet.
func (a *AdminSession) Select(userID uuid.UUID) *dto.TicketResponse {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.selected = userID
	for i := range a.tickets {
		if a.tickets[i].UserId == userID {
			t := a.tickets[i]
			return &t
		}
	}
	return nil
}

// ShouldMarkRead reports whether opening this conversation should fire a
// mark-as-read call, and records that it did. Re-armed by Apply when the
// shopper writes again.
func (a *AdminSession) ShouldMarkRead(userID uuid.UUID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.marked[userID] {
		return false
	}
	a.marked[userID] = true
	return true
}

// Tickets returns the inbox ordered by recency.
func (a *AdminSession) Tickets() []dto.TicketResponse {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]dto.TicketResponse, len(a.tickets))
	copy(out, a.tickets)
	return out
}

// TotalUnread sums the per-ticket unread counts for the console badge.
func (a *AdminSession) TotalUnread() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	total := 0
	for _, t := range a.tickets {
		total += t.UnreadCount
	}
	return total
}
