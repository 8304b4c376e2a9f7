package bootstrap

import (
	"context"
	"log"
	"time"

	"support-chat-be/internal/config"
	"support-chat-be/internal/controller"
	"support-chat-be/internal/handler"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/repository/implementation"
	"support-chat-be/internal/repository/memory"
	"support-chat-be/internal/service"
	"support-chat-be/internal/websocket"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// WebSockets
	ChatSocketHandler *handler.ChatSocketHandler
	WebSocketHub      *websocket.Hub

	// Background Services (Exposed for main.go to run)
	BroadcastService service.IBroadcastService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Redis (ticket snapshot cache; the service tolerates a nil client)
	var rdb *redis.Client
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb = redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis, ticket cache disabled: %v", err)
		rdb = nil
	}

	// In-memory session registry + WebSocket Hub
	sessionRepo := memory.NewSessionRepository()
	wsLogger := logger.NewIsolatedLogger(cfg.Chat.WsLogFilePath)
	wsHub := websocket.NewHub(sessionRepo, wsLogger)
	go wsHub.Run()

	// 3. Domain Services
	messageRepo := implementation.NewMessageRepository(db)
	chatService := service.NewChatService(
		messageRepo,
		pubSub,
		cfg.Chat.Topic,
		rdb,
		time.Duration(cfg.Chat.TicketCacheTTL)*time.Second,
		sysLogger,
	)
	broadcastService := service.NewBroadcastService(pubSub, cfg.Chat.Topic, wsHub, wsLogger)

	// 4. Presentation
	chatSocketHandler := handler.NewChatSocketHandler(wsHub, chatService, wsLogger)

	return &Container{
		ChatController:    controller.NewChatController(chatService),
		ChatSocketHandler: chatSocketHandler,
		WebSocketHub:      wsHub,
		BroadcastService:  broadcastService,
		Logger:            sysLogger,
	}
}
