package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Search     SearchConfig
	Session    SessionConfig
	Logging    LoggingConfig
	OpenAI     OpenAIConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, preferred over the individual fields
	Host               string
	Port               int `validate:"min=1,max=65535"`
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int `validate:"min=1"`
	MaxIdleConnections int `validate:"min=0"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int `validate:"min=1,max=65535"`
	Host           string
	GinMode        string `validate:"oneof=debug release test"`
	AllowedOrigins string
}

// SearchConfig holds property query configuration
type SearchConfig struct {
	ResultLimit  int           `validate:"min=1,max=100"`
	QueryTimeout time.Duration `validate:"min=1ms"`
}

// SessionConfig holds conversation session configuration
type SessionConfig struct {
	MaxHistoryTurns int           `validate:"min=0"` // 0 keeps every turn
	IdleTTL         time.Duration `validate:"min=0"` // 0 disables eviction
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=json console"`
}

// OpenAIConfig holds the language-understanding backend configuration
type OpenAIConfig struct {
	APIKey            string
	APIBase           string  `validate:"required,url"`
	ChatModel         string  `validate:"required"`
	ChatTemperature   float64 `validate:"min=0,max=2"`
	ChatMaxTokens     int     `validate:"min=1"`
	Timeout           int     `validate:"min=1"` // seconds
	RequestsPerSecond float64 `validate:"min=0"` // 0 disables the outbound throttle
	Enabled           bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "rentpe"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Search: SearchConfig{
			ResultLimit:  getEnvAsInt("SEARCH_RESULT_LIMIT", 10),
			QueryTimeout: getEnvAsDuration("SEARCH_QUERY_TIMEOUT", 5*time.Second),
		},
		Session: SessionConfig{
			MaxHistoryTurns: getEnvAsInt("SESSION_MAX_HISTORY_TURNS", 0),
			IdleTTL:         getEnvAsDuration("SESSION_IDLE_TTL", 30*time.Minute),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		OpenAI: OpenAIConfig{
			APIKey:            getEnv("OPENAI_API_KEY", ""),
			APIBase:           getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"),
			ChatModel:         getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			ChatTemperature:   getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0.2),
			ChatMaxTokens:     getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 1024),
			Timeout:           getEnvAsInt("OPENAI_TIMEOUT", 8),
			RequestsPerSecond: getEnvAsFloat("OPENAI_REQUESTS_PER_SECOND", 0),
			Enabled:           getEnv("OPENAI_API_KEY", "") != "",
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges and enumerations of the loaded configuration
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ExtractTimeout returns the bound on a single language-understanding call
func (c *OpenAIConfig) ExtractTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration value for %s, using default %s", key, defaultValue)
		return defaultValue
	}
	return value
}
