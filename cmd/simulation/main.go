package main

import (
	"context"
	"log"
	"os"
	"time"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/entity"
	"support-chat-be/pkg/chatclient"

	"github.com/fatih/color"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// End-to-end walkthrough against a running server: a shopper opens the
// widget and asks a question, the admin console sees the ticket, replies,
// and marks the thread read. Useful for eyeballing the full flow without a
// browser.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}
	baseURL := os.Getenv("APP_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}

	shopperID := uuid.New()
	adminID := uuid.New()

	shopper := chatclient.New(baseURL, mintToken(shopperID, false))
	admin := chatclient.New(baseURL, mintToken(adminID, true))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	color.Cyan("=== Support Chat Simulation ===")
	color.Cyan("Server: %s", baseURL)

	// Admin console comes online first and sits in the shared room.
	adminSock, err := admin.Dial(ctx)
	if err != nil {
		log.Fatalf("admin dial failed: %v", err)
	}
	defer adminSock.Close()
	must(adminSock.Join(entity.RoomAdminSupport))

	// Shopper opens the widget.
	shopperSock, err := shopper.Dial(ctx)
	if err != nil {
		log.Fatalf("shopper dial failed: %v", err)
	}
	defer shopperSock.Close()
	must(shopperSock.Join(entity.UserRoom(shopperID)))

	// Shopper asks a question over REST.
	sent, err := shopper.SendMessage(ctx, &dto.SendMessageRequest{
		SenderId:    shopperID,
		SenderName:  "Sim Shopper",
		SenderEmail: "sim@example.com",
		SenderRole:  entity.RoleUser,
		Message:     "Where is my order?",
		UserId:      shopperID,
	})
	must(err)
	color.Green("SHOPPER sent: %s (id=%s)", sent.Message, sent.Id)

	waitFor(adminSock, sent.Id, "ADMIN console")
	waitFor(shopperSock, sent.Id, "SHOPPER widget")

	// Admin checks the inbox.
	tickets, err := admin.Tickets(ctx)
	must(err)
	color.Yellow("ADMIN inbox: %d ticket(s), first unread=%d", len(tickets), tickets[0].UnreadCount)

	// Admin replies over the socket.
	must(adminSock.Send(&dto.SendMessageRequest{
		SenderId:    adminID,
		SenderName:  "Sim Agent",
		SenderEmail: "agent@example.com",
		SenderRole:  entity.RoleAdmin,
		Message:     "It ships tomorrow.",
		UserId:      shopperID,
	}))
	reply := waitForRole(shopperSock, entity.RoleAdmin, "SHOPPER widget")
	color.Green("SHOPPER received reply: %s", reply.Message)

	// Admin opens the thread; the shopper's message flips to read.
	modified, err := admin.MarkAsRead(ctx, shopperID, entity.RoleAdmin)
	must(err)
	color.Yellow("ADMIN marked read: %d message(s) flipped", modified)

	modified, err = admin.MarkAsRead(ctx, shopperID, entity.RoleAdmin)
	must(err)
	color.Yellow("ADMIN marked read again: %d (idempotent)", modified)

	color.Cyan("=== Done ===")
}

func waitFor(sock *chatclient.Socket, id uuid.UUID, who string) {
	for event := range sock.Events() {
		if event.Event != dto.EventReceiveMessage {
			continue
		}
		var msg dto.MessageResponse
		if err := event.Decode(&msg); err != nil {
			continue
		}
		if msg.Id == id {
			color.Blue("%s received: %s", who, msg.Message)
			return
		}
	}
	log.Fatalf("%s: socket closed before delivery", who)
}

func waitForRole(sock *chatclient.Socket, role, who string) dto.MessageResponse {
	for event := range sock.Events() {
		if event.Event != dto.EventReceiveMessage {
			continue
		}
		var msg dto.MessageResponse
		if err := event.Decode(&msg); err != nil {
			continue
		}
		if msg.SenderRole == role {
			return msg
		}
	}
	log.Fatalf("%s: socket closed before delivery", who)
	return dto.MessageResponse{}
}

func mintToken(userID uuid.UUID, isAdmin bool) string {
	claims := jwt.MapClaims{
		"user_id":  userID.String(),
		"is_admin": isAdmin,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
