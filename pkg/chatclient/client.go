// Package chatclient is the Go counterpart of the browser widget and the
// admin console. It talks to the chat backend over REST and websocket and
// keeps the same local view state the UI keeps: visible messages, the unread
// badge, the composer draft, and the admin ticket inbox.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"support-chat-be/internal/dto"

	"github.com/google/uuid"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a REST client for the chat API. baseURL is the server root
// without the /api prefix, e.g. "http://localhost:5000". The token is
// optional for shopper endpoints but required for the admin inbox.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	var res dto.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) UserMessages(ctx context.Context, userID uuid.UUID) ([]dto.MessageResponse, error) {
	var res []dto.MessageResponse
	if err := c.do(ctx, http.MethodGet, "/api/chat/user/"+userID.String(), nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) Tickets(ctx context.Context) ([]dto.TicketResponse, error) {
	var res []dto.TicketResponse
	if err := c.do(ctx, http.MethodGet, "/api/chat/admin/tickets", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// MarkAsRead reports how many messages actually flipped; zero means the
// conversation was already caught up.
func (c *Client) MarkAsRead(ctx context.Context, userID uuid.UUID, readerRole string) (int64, error) {
	var res dto.MarkAsReadResponse
	req := dto.MarkAsReadRequest{SenderRole: readerRole}
	if err := c.do(ctx, http.MethodPut, "/api/chat/mark-as-read/"+userID.String(), req, &res); err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (c *Client) UnreadCount(ctx context.Context, userID uuid.UUID, readerRole string) (int64, error) {
	var res dto.UnreadCountResponse
	path := fmt.Sprintf("/api/chat/unread-count/%s?role=%s", userID, readerRole)
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return 0, err
	}
	return res.UnreadCount, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API Error %d: %s", resp.StatusCode, string(raw))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
