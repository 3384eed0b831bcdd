package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	Env         string
	PostgresURL string
	MongoURI    string
	RedisAddr   string
	JWTSecret   string

	// Outbound notification channel (Twilio WhatsApp)
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string
	WhatsAppEnabled    bool
	RateLimitPerMinute int
	RateLimitPerHour   int
	NotifyQueueSize    int
	NotifyWorkerCount  int
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		PostgresURL: getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:    getEnv("MONGO_URI", ""),
		RedisAddr:   getEnv("REDIS_ADDR", ""),
		JWTSecret:   getEnv("JWT_SECRET", "supersecretjwtkey"),

		TwilioAccountSID:   getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:    getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioWhatsAppFrom: getEnv("TWILIO_WHATSAPP_NUMBER", ""),
		WhatsAppEnabled:    getEnvBool("WHATSAPP_NOTIFICATIONS_ENABLED", false),
		RateLimitPerMinute: getEnvInt("WHATSAPP_RATE_LIMIT_PER_MINUTE", 5),
		RateLimitPerHour:   getEnvInt("WHATSAPP_RATE_LIMIT_PER_HOUR", 50),
		NotifyQueueSize:    getEnvInt("NOTIFY_QUEUE_SIZE", 256),
		NotifyWorkerCount:  getEnvInt("NOTIFY_WORKER_COUNT", 4),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
