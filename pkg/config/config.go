package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server struct {
		Port    string
		Env     string
		Timeout time.Duration
	}

	// Database configuration
	Database struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
		MaxConns int
		Timeout  time.Duration
	}

	// NLU provider configuration
	NLU struct {
		URL          string
		APIKey       string
		Version      string
		Timeout      time.Duration
		KeywordLimit int
	}

	// Captcha verification configuration
	Captcha struct {
		VerifyURL string
		Secret    string
		Timeout   time.Duration
	}

	// Usage limits
	Limits struct {
		MaxTextChars   int
		DailyQuota     int
		RateLimit      float64
		RateLimitBurst int
	}

	// Security configuration
	Security struct {
		AllowedOrigins []string
		TrustedProxies []string
	}

	// Cache settings
	Cache struct {
		Enabled  bool
		RedisURL string
		TTL      time.Duration
		MaxSize  int
	}

	// Observability settings
	Metrics struct {
		Enabled bool
		Port    string
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}
}

var (
	instance *Config
	once     sync.Once
)

// New creates a new Config instance with values from environment variables
// Uses singleton pattern to ensure only one instance exists
func New() *Config {
	once.Do(func() {
		// Load .env file if exists
		godotenv.Load()

		instance = &Config{}

		// Server config
		instance.Server.Port = getEnvString("PORT", "8081")
		instance.Server.Env = getEnvString("APP_ENV", "development")
		instance.Server.Timeout = getEnvDuration("SERVER_TIMEOUT", 30*time.Second)

		// Database config
		instance.Database.Host = getEnvString("DB_HOST", "localhost")
		instance.Database.Port = getEnvString("DB_PORT", "5432")
		instance.Database.User = getEnvString("DB_USER", "postgres")
		instance.Database.Password = getEnvString("DB_PASSWORD", "postgres")
		instance.Database.Name = getEnvString("DB_NAME", "sentiment-analyzer")
		instance.Database.SSLMode = getEnvString("DB_SSL_MODE", "disable")
		instance.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 20)
		instance.Database.Timeout = getEnvDuration("DB_TIMEOUT", 5*time.Second)

		// NLU provider config
		instance.NLU.URL = getEnvString("NLU_URL", "")
		instance.NLU.APIKey = getEnvString("NLU_API_KEY", "")
		instance.NLU.Version = getEnvString("NLU_VERSION", "2022-04-07")
		instance.NLU.Timeout = getEnvDuration("NLU_TIMEOUT", 30*time.Second)
		instance.NLU.KeywordLimit = getEnvInt("NLU_KEYWORD_LIMIT", 5)

		// Captcha config
		instance.Captcha.VerifyURL = getEnvString("CAPTCHA_VERIFY_URL", "https://www.google.com/recaptcha/api/siteverify")
		instance.Captcha.Secret = getEnvString("CAPTCHA_SECRET", "")
		instance.Captcha.Timeout = getEnvDuration("CAPTCHA_TIMEOUT", 5*time.Second)

		// Usage limits
		instance.Limits.MaxTextChars = getEnvInt("MAX_TEXT_CHARS", 1000)
		instance.Limits.DailyQuota = getEnvInt("DAILY_QUOTA", 10)
		// 10 requests per minute on the analyze route, expressed as tokens per second
		instance.Limits.RateLimit = getEnvFloat("RATE_LIMIT", 10.0/60.0)
		instance.Limits.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 10)

		// Security config
		instance.Security.AllowedOrigins = getEnvStringSlice("ALLOWED_ORIGINS", []string{"*"})
		instance.Security.TrustedProxies = getEnvStringSlice("TRUSTED_PROXIES", []string{"127.0.0.1"})

		// Cache settings
		instance.Cache.Enabled = getEnvBool("CACHE_ENABLED", true)
		instance.Cache.RedisURL = getEnvString("REDIS_URL", "")
		instance.Cache.TTL = getEnvDuration("CACHE_TTL", 15*time.Minute)
		instance.Cache.MaxSize = getEnvInt("CACHE_MAX_SIZE", 1000)

		// Observability settings
		instance.Metrics.Enabled = getEnvBool("METRICS_ENABLED", true)
		instance.Metrics.Port = getEnvString("METRICS_PORT", "2112")

		// Logging config
		instance.Logging.Level = getEnvString("LOG_LEVEL", "info")
		instance.Logging.Format = getEnvString("LOG_FORMAT", "json")
	})

	return instance
}

// Get returns the singleton Config instance
func Get() *Config {
	if instance == nil {
		return New()
	}
	return instance
}

// Helper functions to read environment variables with default values

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
