// Package ticket derives the support inbox from a message set. The same
// functions back the server's /admin/tickets endpoint and the admin console's
// live view, so the two can never disagree on shape: Build recomputes from a
// full snapshot, Merge folds in one newly broadcast message with an
// equivalent result.
package ticket

import (
	"sort"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/entity"
)

// Build partitions messages by their owning shopper and rolls each partition
// up into a ticket. The input may arrive in any order; output is fully
// determined by the set itself.
func Build(messages []dto.MessageResponse) []dto.TicketResponse {
	byUser := make(map[string]*dto.TicketResponse)

	for _, msg := range messages {
		key := msg.UserId.String()
		t, ok := byUser[key]
		if !ok {
			t = &dto.TicketResponse{
				UserId:   msg.UserId,
				Messages: []dto.MessageResponse{},
			}
			byUser[key] = t
		}
		t.Messages = append(t.Messages, msg)
	}

	tickets := make([]dto.TicketResponse, 0, len(byUser))
	for _, t := range byUser {
		SortMessages(t.Messages)
		rollup(t)
		tickets = append(tickets, *t)
	}

	sort.SliceStable(tickets, func(i, j int) bool {
		if !tickets[i].LastMessageTime.Equal(tickets[j].LastMessageTime) {
			return tickets[i].LastMessageTime.After(tickets[j].LastMessageTime)
		}
		// Deterministic tie-break so identical snapshots always render the
		// same inbox, whatever order the store returned rows in.
		return tickets[i].UserId.String() < tickets[j].UserId.String()
	})

	return tickets
}

// Merge applies one newly arrived message to an already built ticket list and
// returns the updated list. The touched ticket moves to the front, matching
// the descending-recency order Build produces for messages arriving in
// timestamp order.
func Merge(tickets []dto.TicketResponse, msg dto.MessageResponse) []dto.TicketResponse {
	for i := range tickets {
		if tickets[i].UserId != msg.UserId {
			continue
		}
		t := tickets[i]
		t.Messages = append(t.Messages, msg)
		SortMessages(t.Messages)
		rollup(&t)

		updated := make([]dto.TicketResponse, 0, len(tickets))
		updated = append(updated, t)
		updated = append(updated, tickets[:i]...)
		updated = append(updated, tickets[i+1:]...)
		return updated
	}

	fresh := dto.TicketResponse{
		UserId:   msg.UserId,
		Messages: []dto.MessageResponse{msg},
	}
	rollup(&fresh)
	return append([]dto.TicketResponse{fresh}, tickets...)
}

// SortMessages orders a thread by the store-assigned timestamp, the only
// authoritative order. Broadcast arrival order is never trusted.
func SortMessages(messages []dto.MessageResponse) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
}

// UnreadCount counts unread messages authored by the given role. The admin
// inbox counts unread shopper messages; the widget badge counts unread admin
// replies.
func UnreadCount(messages []dto.MessageResponse, authorRole string) int {
	count := 0
	for _, msg := range messages {
		if msg.SenderRole == authorRole && !msg.IsRead {
			count++
		}
	}
	return count
}

// rollup recomputes the derived fields of a ticket from its (sorted) thread.
// Display identity comes from the most recent shopper-authored message; a
// thread whose latest message is an admin reply must still show the customer,
// never the admin. If no shopper message exists yet, the latest message's
// fields are the fallback.
func rollup(t *dto.TicketResponse) {
	if len(t.Messages) == 0 {
		return
	}

	latest := t.Messages[len(t.Messages)-1]
	t.LastMessage = latest.Message
	t.LastMessageTime = latest.Timestamp
	t.UnreadCount = UnreadCount(t.Messages, entity.RoleUser)

	t.UserName = latest.SenderName
	t.UserEmail = latest.SenderEmail
	for i := len(t.Messages) - 1; i >= 0; i-- {
		if t.Messages[i].SenderRole == entity.RoleUser {
			t.UserName = t.Messages[i].SenderName
			t.UserEmail = t.Messages[i].SenderEmail
			break
		}
	}
}
