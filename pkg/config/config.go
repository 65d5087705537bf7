// ABOUTME: Configuration management for the application with environment variable support
// ABOUTME: Defines server, pipeline, store, and LLM settings plus feed source loading

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"business-digest-api/core/domain"
)

// Config holds all application configuration
type Config struct {
	// Server contains HTTP server configuration
	Server ServerConfig

	// Pipeline contains aggregation pipeline configuration
	Pipeline PipelineConfig

	// Store contains article store backend configuration
	Store StoreConfig

	// LLM contains language model client configuration
	LLM LLMConfig

	// Log contains logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	// Port is the HTTP server port
	Port string

	// RateLimitPerSecond caps requests per client IP
	RateLimitPerSecond float64
}

// PipelineConfig holds aggregation pipeline configuration
type PipelineConfig struct {
	// SourcesFile is the path to the YAML feed source list
	SourcesFile string

	// RefreshSeconds is the interval between pipeline runs
	RefreshSeconds int

	// MaxItems caps the number of items processed per run
	MaxItems int

	// BatchSize is the number of items sent to the LLM per request
	BatchSize int

	// WindowHours is the recency window for feed entries
	WindowHours int

	// DataDir is where digest, markdown, audit, and status files live
	DataDir string
}

// StoreConfig holds article store backend configuration
type StoreConfig struct {
	// Type specifies the store backend (file/memory/sqlite/redis)
	Type string

	// TTLHours is how long processed articles stay cached
	TTLHours int

	// FilePath is the JSON store location for the file backend
	FilePath string

	// SQLitePath is the database location for the sqlite backend
	SQLitePath string

	// Redis contains Redis-specific configuration
	Redis RedisConfig
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// Address is the Redis server address
	Address string

	// Password is the Redis authentication password
	Password string

	// DB is the Redis database number
	DB int
}

// LLMConfig holds language model client configuration
type LLMConfig struct {
	// APIKey authenticates against the completions API. Empty disables
	// the LLM and the pipeline falls back to deterministic summaries.
	APIKey string

	// Model is the completions model name
	Model string

	// BaseURL overrides the API endpoint, mainly for tests
	BaseURL string

	// RequestsPerMinute paces outbound completion calls
	RequestsPerMinute int
}

// LogConfig holds logging configuration
type LogConfig struct {
	// Level is the minimum log level (debug/info/warn/error)
	Level string

	// File enables rotating file output when non-empty
	File string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnvOrDefault("PORT", "8000"),
			RateLimitPerSecond: getEnvAsFloatOrDefault("RATE_LIMIT_PER_SECOND", 10),
		},
		Pipeline: PipelineConfig{
			SourcesFile:    getEnvOrDefault("SOURCES_FILE", "sources.yml"),
			RefreshSeconds: getEnvAsIntOrDefault("REFRESH_SECONDS", 300),
			MaxItems:       getEnvAsIntOrDefault("MAX_ITEMS", 50),
			BatchSize:      getEnvAsIntOrDefault("BATCH_SIZE", 4),
			WindowHours:    getEnvAsIntOrDefault("WINDOW_HOURS", 48),
			DataDir:        getEnvOrDefault("DATA_DIR", "data"),
		},
		Store: StoreConfig{
			Type:       getEnvOrDefault("STORE_TYPE", "file"),
			TTLHours:   getEnvAsIntOrDefault("CACHE_TTL_HOURS", 24),
			FilePath:   getEnvOrDefault("STORE_FILE_PATH", "data/processed_cache.json"),
			SQLitePath: getEnvOrDefault("STORE_SQLITE_PATH", "data/articles.db"),
			Redis: RedisConfig{
				Address:  getEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
				Password: getEnvOrDefault("REDIS_PASSWORD", ""),
				DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
			},
		},
		LLM: LLMConfig{
			APIKey:            getEnvOrDefault("OPENAI_API_KEY", ""),
			Model:             getEnvOrDefault("LLM_MODEL", "gpt-4o-mini"),
			BaseURL:           getEnvOrDefault("LLM_BASE_URL", "https://api.openai.com/v1"),
			RequestsPerMinute: getEnvAsIntOrDefault("LLM_REQUESTS_PER_MINUTE", 20),
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
			File:  getEnvOrDefault("LOG_FILE", ""),
		},
	}

	return cfg, nil
}

// LoadSources reads the feed source list from a YAML file.
func LoadSources(path string) ([]domain.FeedSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sources file: %w", err)
	}

	var doc struct {
		Sources []domain.FeedSource `yaml:"sources"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing sources file: %w", err)
	}

	for i, s := range doc.Sources {
		if s.Name == "" || s.URL == "" {
			return nil, fmt.Errorf("source %d is missing a name or url", i)
		}
	}

	return doc.Sources, nil
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the environment variable as int or a default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloatOrDefault returns the environment variable as float64 or a default
func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("port cannot be empty")
	}

	if c.Pipeline.RefreshSeconds < 1 {
		return errors.New("refresh interval must be at least 1 second")
	}

	if c.Pipeline.MaxItems < 1 {
		return errors.New("max items must be at least 1")
	}

	if c.Pipeline.BatchSize < 1 {
		return errors.New("batch size must be at least 1")
	}

	if c.Pipeline.WindowHours < 1 {
		return errors.New("window must be at least 1 hour")
	}

	if c.Store.TTLHours < 1 {
		return errors.New("cache TTL must be at least 1 hour")
	}

	switch c.Store.Type {
	case "file", "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("store type must be one of file, memory, sqlite, redis; got %q", c.Store.Type)
	}

	if c.Store.Type == "redis" && c.Store.Redis.Address == "" {
		return errors.New("redis address cannot be empty when using redis store")
	}

	if c.Store.Type == "file" && c.Store.FilePath == "" {
		return errors.New("store file path cannot be empty when using file store")
	}

	if c.Store.Type == "sqlite" && c.Store.SQLitePath == "" {
		return errors.New("sqlite path cannot be empty when using sqlite store")
	}

	return nil
}
