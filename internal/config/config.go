package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"profitpulse/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Server   ServerConfig
	AI       AIConfig
	Database DatabaseConfig
	LogLevel string
}

// DataConfig holds the source locations and ingestion switches
type DataConfig struct {
	SummaryFile  string
	ProjectsFile string
	// CacheTables keeps the last load until a source file changes.
	CacheTables bool
	// ParenNegativeCurrency treats "(500.00)" as -500 in monetary columns.
	ParenNegativeCurrency bool
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port     string
	GinMode  string
	Password string
}

// AIConfig holds AI/LLM related settings
type AIConfig struct {
	Provider     string
	GeminiKey    string
	GeminiModel  string
	OpenAIKey    string
	OpenAIModel  string
	OpenAIURL    string
	MaxTokens    int
	Temperature  float64
	Timeout      time.Duration
	MaxPromptRow int
}

// Enabled reports whether the selected provider has a key
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case ProviderMock:
		return true
	case ProviderOpenAI:
		return c.OpenAIKey != ""
	default:
		return c.GeminiKey != ""
	}
}

// DatabaseConfig holds the optional analysis store connection
type DatabaseConfig struct {
	URL string
}

// Supported LLM providers
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// Defaults shared by config and tests
const (
	DefaultSummaryFile  = "attached_assets/Summary.csv"
	DefaultProjectsFile = "attached_assets/Projects.csv"
	DefaultPassword     = "projectpulse123"
)

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data:     *loadDataConfig(),
		Server:   *loadServerConfig(),
		AI:       *loadAIConfig(),
		Database: DatabaseConfig{URL: getEnvOrDefault("DATABASE_URL", "")},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		SummaryFile:           getEnvOrDefault("SUMMARY_FILE", DefaultSummaryFile),
		ProjectsFile:          getEnvOrDefault("PROJECTS_FILE", DefaultProjectsFile),
		CacheTables:           getEnvBoolOrDefault("CACHE_TABLES", false),
		ParenNegativeCurrency: getEnvBoolOrDefault("PAREN_NEGATIVE_CURRENCY", false),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:     getEnvOrDefault("PORT", "8501"),
		GinMode:  getEnvOrDefault("GIN_MODE", "release"),
		Password: getEnvOrDefault("DASHBOARD_PASSWORD", DefaultPassword),
	}
}

func loadAIConfig() *AIConfig {
	return &AIConfig{
		Provider:     strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderGemini)),
		GeminiKey:    getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:  getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-pro"),
		OpenAIKey:    getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnvOrDefault("LLM_MODEL", "gpt-4o-mini"),
		OpenAIURL:    getEnvOrDefault("LLM_BASE_URL", ""),
		MaxTokens:    getEnvIntOrDefault("LLM_MAX_TOKENS", 2000),
		Temperature:  getEnvFloatOrDefault("LLM_TEMPERATURE", 0.2),
		Timeout:      getEnvDurationOrDefault("LLM_TIMEOUT", 60*time.Second),
		MaxPromptRow: getEnvIntOrDefault("AI_MAX_ROWS", 15),
	}
}

func validateConfig(config *Config) error {
	if config.Data.SummaryFile == "" || config.Data.ProjectsFile == "" {
		return errors.ConfigInvalid("both SUMMARY_FILE and PROJECTS_FILE are required")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	switch config.AI.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderMock:
	default:
		return errors.ConfigInvalid("LLM_PROVIDER must be gemini, openai or mock")
	}
	if config.AI.MaxPromptRow <= 0 {
		return errors.ConfigInvalid("AI_MAX_ROWS must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
