package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	// Mailchimp (mailing-list target)
	MailchimpAPIKey       string
	MailchimpListID       string
	MailchimpServerPrefix string
	// Pipedrive (CRM target)
	PipedriveAPIKey string
	PipedriveDomain string
	// Telegram review driver
	TelegramToken string
	APIBaseURL    string
	// Session store
	RedisURL           string
	RedisPassword      string
	SessionTTLMinutes  int // 0 = sessions never expire
	SessionMaxCount    int // 0 = unbounded
	GatewayTimeoutSecs int
}

func LoadConfig() (*Config, error) {
	// Load .env file (effective locally, ignored in production when absent)
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		// Mailchimp
		MailchimpAPIKey:       getEnv("MAILCHIMP_API_KEY", ""),
		MailchimpListID:       getEnv("MAILCHIMP_LIST_ID", ""),
		MailchimpServerPrefix: getEnv("MAILCHIMP_SERVER_PREFIX", ""),
		// Pipedrive
		PipedriveAPIKey: getEnv("PIPEDRIVE_API_KEY", ""),
		PipedriveDomain: getEnv("PIPEDRIVE_DOMAIN", ""),
		// Telegram
		TelegramToken: getEnv("TELEGRAM_TOKEN", ""),
		APIBaseURL:    getEnv("API_BASE_URL", "http://localhost:8080"),
		// Session store (with sensible defaults)
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		SessionTTLMinutes:  getEnvInt("SESSION_TTL_MINUTES", 0), // 0 keeps sessions until restart
		SessionMaxCount:    getEnvInt("SESSION_MAX_COUNT", 0),   // 0 = no capacity bound
		GatewayTimeoutSecs: getEnvInt("GATEWAY_TIMEOUT_SECONDS", 10),
	}

	// Missing target credentials are valid configuration: that target simply
	// fails closed. Warn here so operators can tell "not configured" apart
	// from remote rejections, which the API boundary cannot.
	if cfg.MailchimpAPIKey == "" || cfg.MailchimpListID == "" || cfg.MailchimpServerPrefix == "" {
		log.Println("WARNING: Mailchimp credentials not fully configured. Mailing-list enrollments will fail.")
	}
	if cfg.PipedriveAPIKey == "" || cfg.PipedriveDomain == "" {
		log.Println("WARNING: Pipedrive credentials not configured. CRM enrollments will fail.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Sessions will be kept in memory only.")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}
