package handler

import (
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/pkg/serverutils"
	internalWS "support-chat-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ChatSocketHandler owns the websocket handshake: token extraction, identity
// resolution, and the upgrade into a hub-managed session.
type ChatSocketHandler struct {
	hub    *internalWS.Hub
	sender internalWS.Sender
	logger logger.ILogger
}

func NewChatSocketHandler(hub *internalWS.Hub, sender internalWS.Sender, log logger.ILogger) *ChatSocketHandler {
	return &ChatSocketHandler{
		hub:    hub,
		sender: sender,
		logger: log,
	}
}

// ServeWs upgrades the connection once the bearer token checks out. Browsers
// cannot set headers on websocket requests, so the token rides the query
// string; tooling may still use the Authorization header.
func (h *ChatSocketHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	identity, err := serverutils.ParseIdentityToken(tokenStr)
	if err != nil {
		h.logger.Warn("ChatSocketHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("ChatSocketHandler", "Starting chat session", map[string]interface{}{
				"user_id":  identity.UserID,
				"is_admin": identity.IsAdmin,
			})
			internalWS.ServeWs(h.hub, conn, identity.UserID, identity.IsAdmin, h.sender)
			h.logger.Info("ChatSocketHandler", "Chat session ended", map[string]interface{}{
				"user_id": identity.UserID,
			})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes mounts the websocket entrypoint under the chat prefix.
func (h *ChatSocketHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/chat/ws", h.ServeWs)
}
