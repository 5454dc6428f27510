package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Generation providers understood by GENERATION_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Logging    LoggingConfig
	Generation GenerationConfig
}

// PostgreSQLConfig holds the optional catalog database configuration.
// When neither DSN nor Host is set the static catalog is used.
type PostgreSQLConfig struct {
	DSN                string
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// GenerationConfig selects and tunes the text-generation backend.
type GenerationConfig struct {
	Provider       string
	OpenAI         OpenAIConfig
	Gemini         GeminiConfig
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	BackoffFactor  float64
	MaxConcurrency int
}

// OpenAIConfig holds OpenAI-compatible API configuration
type OpenAIConfig struct {
	APIKey          string
	APIBase         string
	ChatModel       string
	ChatTemperature float64
	ChatMaxTokens   int
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey  string
	APIBase string
	Model   string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			Host:               getEnv("PG_HOST", ""),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "rentals"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 2),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Generation: GenerationConfig{
			Provider: getEnv("GENERATION_PROVIDER", ProviderOpenAI),
			OpenAI: OpenAIConfig{
				APIKey:          getEnv("OPENAI_API_KEY", ""),
				APIBase:         getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"),
				ChatModel:       getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
				ChatTemperature: getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0.7),
				ChatMaxTokens:   getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 1024),
			},
			Gemini: GeminiConfig{
				APIKey:  getEnv("GEMINI_API_KEY", ""),
				APIBase: getEnv("GEMINI_API_BASE", ""),
				Model:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			},
			Timeout:        time.Duration(getEnvAsInt("GENERATION_TIMEOUT", 30)) * time.Second,
			MaxRetries:     getEnvAsInt("GENERATION_MAX_RETRIES", 2),
			RetryDelay:     time.Duration(getEnvAsInt("GENERATION_RETRY_DELAY_MS", 500)) * time.Millisecond,
			BackoffFactor:  getEnvAsFloat("GENERATION_BACKOFF_FACTOR", 2.0),
			MaxConcurrency: getEnvAsInt("GENERATION_MAX_CONCURRENCY", 8),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch c.Generation.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unknown GENERATION_PROVIDER %q (want %s or %s)", c.Generation.Provider, ProviderOpenAI, ProviderGemini)
	}
	if c.Generation.Timeout <= 0 {
		return fmt.Errorf("GENERATION_TIMEOUT must be positive")
	}
	if c.Generation.MaxRetries < 0 {
		return fmt.Errorf("GENERATION_MAX_RETRIES must not be negative")
	}
	if c.Generation.MaxConcurrency < 1 {
		return fmt.Errorf("GENERATION_MAX_CONCURRENCY must be at least 1")
	}
	return nil
}

// GenerationEnabled reports whether the selected provider has credentials.
func (c *Config) GenerationEnabled() bool {
	switch c.Generation.Provider {
	case ProviderGemini:
		return c.Generation.Gemini.APIKey != ""
	default:
		return c.Generation.OpenAI.APIKey != ""
	}
}

// UsePostgres reports whether a catalog database was configured.
func (c *Config) UsePostgres() bool {
	return c.PostgreSQL.DSN != "" || c.PostgreSQL.Host != ""
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
		log.Warn().Str("key", key).Int("default", defaultValue).Msg("invalid integer value, using default")
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
		log.Warn().Str("key", key).Float64("default", defaultValue).Msg("invalid float value, using default")
		return defaultValue
	}
	return value
}
