package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                    string
	Env                     string
	MetricsPort             string
	AppBaseURL              string
	FirebaseCredentialsPath string
	PostgresConnStr         string
	MongoURI                string
	MongoDatabase           string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// ServiceRoleSecret signs the JWTs accepted on /functions routes.
	ServiceRoleSecret string

	PresenceWindow time.Duration
	DedupeTTL      time.Duration

	SMTP          SMTPConfig
	EmailDelivery string // "direct" or "outbox"
	Outbox        OutboxConfig

	LLM      LLMConfig
	AutoPost AutoPostConfig

	URLCacheSize int
	URLCacheTTL  time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Domain   string
}

// OutboxConfig tunes the email dispatcher when EmailDelivery is "outbox".
type OutboxConfig struct {
	Interval   time.Duration
	MaxRetries int
	BatchSize  int
}

type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type AutoPostConfig struct {
	Enabled       bool
	MinInterval   time.Duration
	MaxInterval   time.Duration
	CheckInterval time.Duration
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		MetricsPort:             getEnv("METRICS_PORT", "9090"),
		AppBaseURL:              strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:3000"), "/"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "iblue"),
		RedisAddr:               getEnv("REDIS_ADDR", ""),
		RedisPassword:           getEnv("REDIS_PASSWORD", ""),
		RedisDB:                 getEnvInt("REDIS_DB", 0),
		ServiceRoleSecret:       getEnv("SERVICE_ROLE_SECRET", ""),
		PresenceWindow:          getEnvDuration("PRESENCE_WINDOW", 3*time.Minute),
		DedupeTTL:               getEnvDuration("DEDUPE_TTL", 24*time.Hour),
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "iblue <notifications@iblue.dev>"),
			Domain:   getEnv("SMTP_DOMAIN", "iblue.dev"),
		},
		EmailDelivery: getEnv("EMAIL_DELIVERY", "direct"),
		Outbox: OutboxConfig{
			Interval:   getEnvDuration("EMAIL_OUTBOX_INTERVAL", 5*time.Second),
			MaxRetries: getEnvInt("EMAIL_OUTBOX_MAX_RETRIES", 5),
			BatchSize:  getEnvInt("EMAIL_OUTBOX_BATCH_SIZE", 50),
		},
		LLM: LLMConfig{
			APIKey:  getEnv("LLM_API_KEY", ""),
			BaseURL: getEnv("LLM_BASE_URL", ""),
			Model:   getEnv("LLM_MODEL", "gpt-4o-mini"),
		},
		AutoPost: AutoPostConfig{
			Enabled:       getEnvBool("AUTOPOST_ENABLED", false),
			MinInterval:   getEnvDuration("AUTOPOST_MIN_INTERVAL", 30*time.Minute),
			MaxInterval:   getEnvDuration("AUTOPOST_MAX_INTERVAL", 2*time.Hour),
			CheckInterval: getEnvDuration("AUTOPOST_CHECK_INTERVAL", time.Minute),
		},
		URLCacheSize: getEnvInt("URL_CACHE_SIZE", 1024),
		URLCacheTTL:  getEnvDuration("URL_CACHE_TTL", 10*time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}
