package config

import (
	"os"
	"strconv"
	"time"

	"amira/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	AI       AIConfig
	Telegram TelegramConfig
	Server   ServerConfig
	Therapy  TherapyConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// AIConfig holds language-service settings
type AIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// TelegramConfig holds messaging gateway settings
type TelegramConfig struct {
	Token       string
	PollTimeout time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// TherapyConfig holds the conversation policy thresholds. The source system
// accumulated divergent values over time; they live here as one coherent,
// tunable policy.
type TherapyConfig struct {
	// CheckpointEvery is the append cadence of durable session snapshots.
	CheckpointEvery int
	// ClassifyEvery is the append cadence of condition classification.
	ClassifyEvery int
	// ClassifyMinInteractions gates classification until the ledger has
	// enough context.
	ClassifyMinInteractions int
	// ClassifyWindow is how many trailing interactions feed the classifier.
	ClassifyWindow int
	// LettingGoOfferEvery controls how often the letting-go technique is
	// offered during negative-emotion stretches.
	LettingGoOfferEvery int
	// EngagementTolerance is the relative band within which engagement is
	// reported stable.
	EngagementTolerance float64
	// ProgressReportSessions is how many recent closed sessions feed a
	// progress report.
	ProgressReportSessions int
	// WorkerQueueSize is the per-patient event buffer.
	WorkerQueueSize int
	// MaxConcurrentWorkers bounds simultaneously active patient workers.
	MaxConcurrentWorkers int64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load database configuration")
	}
	config.Database = *dbConfig

	aiConfig, err := loadAIConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AI configuration")
	}
	config.AI = *aiConfig

	config.Telegram = *loadTelegramConfig()
	config.Server = *loadServerConfig()
	config.Therapy = *LoadTherapyConfig()

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}
	return &DatabaseConfig{URL: url}, nil
}

func loadAIConfig() (*AIConfig, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.ConfigInvalid("GEMINI_API_KEY is required")
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.0-flash"
	}

	return &AIConfig{
		APIKey:      apiKey,
		BaseURL:     getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		Model:       model,
		MaxTokens:   getEnvIntOrDefault("MAX_TOKENS", 2048),
		Temperature: getEnvFloatOrDefault("TEMPERATURE", 0.7),
		Timeout:     getEnvDurationOrDefault("AI_TIMEOUT", 30*time.Second),
	}, nil
}

func loadTelegramConfig() *TelegramConfig {
	return &TelegramConfig{
		Token:       os.Getenv("TELEGRAM_TOKEN"),
		PollTimeout: getEnvDurationOrDefault("TELEGRAM_POLL_TIMEOUT", 30*time.Second),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port: getEnvOrDefault("PORT", "8080"),
	}
}

// LoadTherapyConfig reads the conversation policy, falling back to the
// consolidated defaults. Exported separately so tests can build a policy
// without the rest of the environment.
func LoadTherapyConfig() *TherapyConfig {
	return &TherapyConfig{
		CheckpointEvery:         getEnvIntOrDefault("CHECKPOINT_EVERY", 5),
		ClassifyEvery:           getEnvIntOrDefault("CLASSIFY_EVERY", 5),
		ClassifyMinInteractions: getEnvIntOrDefault("CLASSIFY_MIN_INTERACTIONS", 3),
		ClassifyWindow:          getEnvIntOrDefault("CLASSIFY_WINDOW", 5),
		LettingGoOfferEvery:     getEnvIntOrDefault("LETTING_GO_OFFER_EVERY", 3),
		EngagementTolerance:     getEnvFloatOrDefault("ENGAGEMENT_TOLERANCE", 0.05),
		ProgressReportSessions:  getEnvIntOrDefault("PROGRESS_REPORT_SESSIONS", 10),
		WorkerQueueSize:         getEnvIntOrDefault("WORKER_QUEUE_SIZE", 32),
		MaxConcurrentWorkers:    int64(getEnvIntOrDefault("MAX_CONCURRENT_WORKERS", 64)),
	}
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("database URL is required")
	}
	if config.AI.APIKey == "" {
		return errors.ConfigInvalid("Gemini API key is required")
	}
	if config.Therapy.CheckpointEvery <= 0 {
		return errors.ConfigInvalid("checkpoint cadence must be positive")
	}
	if config.Therapy.ClassifyEvery <= 0 {
		return errors.ConfigInvalid("classification cadence must be positive")
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
