package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env      string
	HTTPAddr string

	// MongoURI empty means the in-memory stores are used instead.
	MongoURI string
	MongoDB  string

	S3Endpoint       string
	S3PublicEndpoint string
	S3AccessKey      string
	S3SecretKey      string
	S3Bucket         string
	S3UseSSL         bool
	PresignTTL       time.Duration

	ChatListInterval     time.Duration
	ChatMessagesInterval time.Duration
	ChatUnreadInterval   time.Duration

	SeedDemoData bool
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:              getEnv("APP_ENV", "dev"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8000"),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDB:          getEnv("MONGO_DB", "tenderdesk"),
		S3Endpoint:       getEnv("S3_ENDPOINT", "http://localhost:9000"),
		S3PublicEndpoint: getEnv("S3_PUBLIC_ENDPOINT", ""),
		S3AccessKey:      getEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:      getEnv("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:         getEnv("S3_BUCKET", "tenderdesk-files"),
	}

	presignTTL, err := parseDurationEnv("S3_PRESIGN_TTL", 60*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.PresignTTL = presignTTL

	listInterval, err := parseDurationEnv("CHAT_LIST_INTERVAL", 4*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.ChatListInterval = listInterval

	messagesInterval, err := parseDurationEnv("CHAT_MESSAGES_INTERVAL", 1500*time.Millisecond)
	if err != nil {
		return Config{}, err
	}
	cfg.ChatMessagesInterval = messagesInterval

	unreadInterval, err := parseDurationEnv("CHAT_UNREAD_INTERVAL", 5*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.ChatUnreadInterval = unreadInterval

	seed, err := parseBoolEnv("SEED_DEMO_DATA", true)
	if err != nil {
		return Config{}, err
	}
	cfg.SeedDemoData = seed

	useSSL, err := parseBoolEnv("S3_USE_SSL", false)
	if err != nil {
		return Config{}, err
	}
	cfg.S3UseSSL = useSSL
	if cfg.S3PublicEndpoint == "" {
		cfg.S3PublicEndpoint = cfg.S3Endpoint
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
