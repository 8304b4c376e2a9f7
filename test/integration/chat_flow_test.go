package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"support-chat-be/internal/bootstrap"
	"support-chat-be/internal/config"
	"support-chat-be/internal/dto"
	"support-chat-be/internal/entity"
	"support-chat-be/internal/model"
	"support-chat-be/internal/server"
	"support-chat-be/pkg/database"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

// Exercises the full REST flow against a real Postgres: send, history,
// admin inbox, mark-as-read, unread badge. Requires DB_CONNECTION_STRING.
func TestChatFlow(t *testing.T) {
	// Load .env from root (2 levels up) because tests run in package dir
	if err := godotenv.Load("../../.env"); err != nil {
		t.Logf("Warning: Could not load ../../.env: %v", err)
	}
	if os.Getenv("JWT_SECRET") == "" {
		os.Setenv("JWT_SECRET", "integration_secret")
	}
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		t.Skip("DB_CONNECTION_STRING not set, skipping integration test")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}
	if err := db.AutoMigrate(&model.Message{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	container := bootstrap.NewContainer(db, cfg)
	srv := server.New(cfg, container)
	app := srv.GetApp()

	shopperID := uuid.New()
	adminID := uuid.New()
	t.Cleanup(func() {
		db.Where("user_id = ?", shopperID).Delete(&model.Message{})
	})

	// 1. Shopper sends a message
	sent := postJSON(t, app, "/api/chat/", "", dto.SendMessageRequest{
		SenderId:    shopperID,
		SenderName:  "Integration Shopper",
		SenderEmail: "it-shopper@example.com",
		SenderRole:  entity.RoleUser,
		Message:     "Integration hello",
		UserId:      shopperID,
	}, fiber.StatusCreated)

	var stored dto.MessageResponse
	assert.NoError(t, json.Unmarshal(sent, &stored))
	assert.NotEqual(t, uuid.Nil, stored.Id)
	assert.False(t, stored.IsRead)

	// 2. Shopper history contains it
	raw := getJSON(t, app, "/api/chat/user/"+shopperID.String(), "", fiber.StatusOK)
	var history []dto.MessageResponse
	assert.NoError(t, json.Unmarshal(raw, &history))
	assert.Len(t, history, 1)
	assert.Equal(t, stored.Id, history[0].Id)

	// 3. Admin inbox shows the ticket; requires an admin token
	adminToken := signToken(t, adminID, true)

	status, _ := request(t, app, "GET", "/api/chat/admin/tickets", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status, "no token")

	raw = getJSON(t, app, "/api/chat/admin/tickets", adminToken, fiber.StatusOK)
	var tickets []dto.TicketResponse
	assert.NoError(t, json.Unmarshal(raw, &tickets))
	found := false
	for _, ticket := range tickets {
		if ticket.UserId == shopperID {
			found = true
			assert.Equal(t, "Integration hello", ticket.LastMessage)
			assert.Equal(t, 1, ticket.UnreadCount)
		}
	}
	assert.True(t, found, "shopper conversation appears in the inbox")

	// 4. Admin reads the thread, twice; the second call is a no-op
	raw = putJSON(t, app, "/api/chat/mark-as-read/"+shopperID.String(), "",
		dto.MarkAsReadRequest{SenderRole: entity.RoleAdmin}, fiber.StatusOK)
	var marked dto.MarkAsReadResponse
	assert.NoError(t, json.Unmarshal(raw, &marked))
	assert.Equal(t, int64(1), marked.ModifiedCount)

	raw = putJSON(t, app, "/api/chat/mark-as-read/"+shopperID.String(), "",
		dto.MarkAsReadRequest{SenderRole: entity.RoleAdmin}, fiber.StatusOK)
	assert.NoError(t, json.Unmarshal(raw, &marked))
	assert.Equal(t, int64(0), marked.ModifiedCount)

	// 5. Unread badge for the admin view is now clear
	raw = getJSON(t, app, fmt.Sprintf("/api/chat/unread-count/%s?role=admin", shopperID), "", fiber.StatusOK)
	var unread dto.UnreadCountResponse
	assert.NoError(t, json.Unmarshal(raw, &unread))
	assert.Equal(t, int64(0), unread.UnreadCount)
}

func request(t *testing.T, app *fiber.App, method, path, token string, body []byte) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, 5000)
	assert.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	return resp.StatusCode, raw
}

func postJSON(t *testing.T, app *fiber.App, path, token string, body interface{}, wantStatus int) []byte {
	t.Helper()
	raw, err := json.Marshal(body)
	assert.NoError(t, err)
	status, out := request(t, app, "POST", path, token, raw)
	assert.Equal(t, wantStatus, status, string(out))
	return out
}

func putJSON(t *testing.T, app *fiber.App, path, token string, body interface{}, wantStatus int) []byte {
	t.Helper()
	raw, err := json.Marshal(body)
	assert.NoError(t, err)
	status, out := request(t, app, "PUT", path, token, raw)
	assert.Equal(t, wantStatus, status, string(out))
	return out
}

func getJSON(t *testing.T, app *fiber.App, path, token string, wantStatus int) []byte {
	t.Helper()
	status, out := request(t, app, "GET", path, token, nil)
	assert.Equal(t, wantStatus, status, string(out))
	return out
}

func signToken(t *testing.T, userID uuid.UUID, isAdmin bool) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id":  userID.String(),
		"is_admin": isAdmin,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(os.Getenv("JWT_SECRET")))
	assert.NoError(t, err)
	return signed
}
