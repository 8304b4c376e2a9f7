package main

import (
	"log"
	"os"
	"time"

	"support-chat-be/internal/model"
	"support-chat-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

// Seeds a couple of demo conversations so the admin inbox has something to
// show on a fresh database. Safe to re-run; it skips when messages exist.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	var count int64
	if err := db.Model(&model.Message{}).Count(&count).Error; err != nil {
		log.Fatalf("Error: Failed to inspect messages table: %v", err)
	}
	if count > 0 {
		log.Printf("Skipping seed: %d messages already present", count)
		return
	}

	seedConversations(db)
	log.Println("✅ Success: Demo conversations seeded.")
}

func seedConversations(db *gorm.DB) {
	adminID := uuid.New()
	base := time.Now().UTC().Add(-2 * time.Hour)

	alice := shopper{id: uuid.New(), name: "Alice Hartono", email: "alice@example.com"}
	bob := shopper{id: uuid.New(), name: "Bob Wijaya", email: "bob@example.com"}

	messages := []model.Message{
		alice.says("Hi, my order #1042 still shows as processing.", base),
		adminReply(alice, adminID, "Checking with the warehouse now, one moment.", base.Add(3*time.Minute)),
		alice.says("Thanks! It has been three days.", base.Add(5*time.Minute)),

		bob.says("Can I change the delivery address on my last order?", base.Add(30*time.Minute)),
		adminReply(bob, adminID, "Sure, what is the new address?", base.Add(32*time.Minute)),
	}

	for i := range messages {
		if err := db.Create(&messages[i]).Error; err != nil {
			log.Fatalf("Error: Failed to seed message: %v", err)
		}
	}
	log.Printf("Seeded %d messages across 2 conversations", len(messages))
}

type shopper struct {
	id    uuid.UUID
	name  string
	email string
}

func (s shopper) says(text string, at time.Time) model.Message {
	return model.Message{
		Id:         uuid.New(),
		SenderId:   s.id,
		SenderName: s.name, SenderEmail: s.email,
		SenderRole: "user",
		Message:    text,
		UserId:     s.id,
		Timestamp:  at,
	}
}

func adminReply(to shopper, adminID uuid.UUID, text string, at time.Time) model.Message {
	return model.Message{
		Id:         uuid.New(),
		SenderId:   adminID,
		SenderName: "Support Team", SenderEmail: "support@example.com",
		SenderRole: "admin",
		Message:    text,
		UserId:     to.id,
		Timestamp:  at,
	}
}
