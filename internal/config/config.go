package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is built once at startup and passed explicitly to every component.
type Config struct {
	DBDriver   string
	DBUser     string
	DBPassword string
	DBName     string
	DBHost     string
	DBPort     string
	SQLitePath string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	BotToken          string
	BotUsername       string
	ChannelID         string
	ChannelInviteLink string

	ListLimit           int
	LeaderboardLimit    int
	LeaderboardCacheTTL time.Duration
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		DBDriver:            getEnv("DB_DRIVER", DriverPostgres),
		DBUser:              getEnv("DB_USER", "postgres"),
		DBPassword:          getEnv("DB_PASSWORD", "postgres"),
		DBName:              getEnv("DB_NAME", "parrainage_bot"),
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              getEnv("DB_PORT", "5432"),
		SQLitePath:          getEnv("SQLITE_PATH", "parrainage.db"),
		RedisHost:           getEnv("REDIS_HOST", "localhost"),
		RedisPort:           getEnv("REDIS_PORT", "6379"),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		BotToken:            getEnv("TELEGRAM_BOT_TOKEN", ""),
		BotUsername:         getEnv("BOT_USERNAME", ""),
		ChannelID:           getEnv("CHANNEL_ID", ""),
		ChannelInviteLink:   getEnv("CHANNEL_INVITE_LINK", ""),
		ListLimit:           getEnvInt("LIST_LIMIT", 50),
		LeaderboardLimit:    getEnvInt("LEADERBOARD_LIMIT", 10),
		LeaderboardCacheTTL: getEnvDuration("LEADERBOARD_CACHE_TTL", time.Minute),
	}
}

// RedisEnabled reports whether a Redis host is configured. An empty REDIS_HOST disables
// the leaderboard cache and announcement de-duplication.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid %s=%q, using %d", key, value, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid %s=%q, using %s", key, value, fallback)
		return fallback
	}
	return d
}
