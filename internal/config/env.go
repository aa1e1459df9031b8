package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()
}

const (
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	// Generation service
	LLMProvider       string
	OllamaAPIURL      string
	OllamaModel       string
	AnthropicAPIKey   string
	AnthropicModel    string
	LLMTemperature    float64
	GenerationTimeout time.Duration

	// Google
	GoogleCredentialsFile string
	GoogleTokenFile       string
	GmailPollInterval     int
	GmailQuery            string

	// Mail
	ResendAPIKey string
	FromAddress  string

	// Optional with defaults
	DBPath                 string
	HTTPPort               int
	BaseURL                string
	ContactsFile           string
	DefaultMeetingDuration int
	DefaultTimezone        string
	MaxHistoryLength       int
	DevMode                bool
}

func LoadFromEnv() *Config {
	port := getEnvAsIntOrDefault("ASSISTANT_HTTP_PORT", 3001)

	cfg := &Config{
		LLMProvider:       getEnvOrDefault("LLM_PROVIDER", ProviderOllama),
		OllamaAPIURL:      getEnvOrDefault("OLLAMA_API_URL", "http://localhost:11434"),
		OllamaModel:       getEnvOrDefault("OLLAMA_MODEL", "mistral"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:    getEnvOrDefault("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		LLMTemperature:    getEnvAsFloatOrDefault("LLM_TEMPERATURE", 0.1),
		GenerationTimeout: getEnvAsDurationOrDefault("LLM_TIMEOUT", 30*time.Second),

		GoogleCredentialsFile: getEnvOrDefault("GOOGLE_CREDENTIALS_FILE", "./credentials.json"),
		GoogleTokenFile:       getEnvOrDefault("GOOGLE_TOKEN_FILE", "./token.json"),
		GmailPollInterval:     getEnvAsIntOrDefault("GMAIL_POLL_INTERVAL", 0),
		GmailQuery:            getEnvOrDefault("GMAIL_QUERY", "is:unread subject:meeting"),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		FromAddress:  getEnvOrDefault("SMTP_EMAIL", "Meeting Assistant <assistant@resend.dev>"),

		DBPath:                 getEnvOrDefault("ASSISTANT_DB_PATH", "./assistant.db"),
		HTTPPort:               port,
		BaseURL:                getEnvOrDefault("ASSISTANT_BASE_URL", fmt.Sprintf("http://localhost:%d", port)),
		ContactsFile:           os.Getenv("CONTACTS_FILE"),
		DefaultMeetingDuration: getEnvAsIntOrDefault("DEFAULT_MEETING_DURATION", 60),
		DefaultTimezone:        getEnvOrDefault("DEFAULT_TIMEZONE", "UTC"),
		MaxHistoryLength:       getEnvAsIntOrDefault("MAX_HISTORY_LENGTH", 10),
		DevMode:                getEnvAsBoolOrDefault("ASSISTANT_DEV_MODE", false),
	}

	return cfg
}

// Validate checks values that would otherwise fail deep inside a request.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("ASSISTANT_HTTP_PORT must be between 1 and 65535")
	}
	if c.DBPath == "" {
		return fmt.Errorf("ASSISTANT_DB_PATH cannot be empty")
	}
	if c.DefaultMeetingDuration <= 0 {
		return fmt.Errorf("DEFAULT_MEETING_DURATION must be > 0")
	}
	if c.MaxHistoryLength <= 0 {
		return fmt.Errorf("MAX_HISTORY_LENGTH must be > 0")
	}
	if c.GenerationTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be > 0")
	}
	switch c.LLMProvider {
	case ProviderOllama:
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER=anthropic")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvAsDurationOrDefault accepts Go durations ("45s") or a bare number of seconds.
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
