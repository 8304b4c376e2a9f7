package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Chat     ChatConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type ChatConfig struct {
	// Topic the chat service publishes persisted messages on; the broadcast
	// consumer subscribes to the same name.
	Topic string
	// Dedicated log file for websocket traffic, kept out of the main log.
	WsLogFilePath string
	// TTL in seconds for the cached admin ticket snapshot in Redis.
	TicketCacheTTL int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "5000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:5000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Chat: ChatConfig{
			Topic:          getEnv("CHAT_TOPIC_NAME", "CHAT_MESSAGE_CREATED"),
			WsLogFilePath:  getEnv("CHAT_WS_LOG_FILE_PATH", "logs/chat-ws.log"),
			TicketCacheTTL: getEnvAsInt("CHAT_TICKET_CACHE_TTL", 10),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
