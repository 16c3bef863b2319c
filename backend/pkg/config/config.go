package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// App
	Port  string
	Env   string
	Debug bool

	// Graph store
	GraphBackend  string // "sqlite" or "neo4j"
	SQLitePath    string
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// Triage LLM
	LLMBaseURL    string
	LLMAPIKey     string
	ModelID       string
	TriageTimeout time.Duration

	// Conversation history
	HistoryBackend string // "memory" or "redis"
	HistoryLimit   int    // turns retained per conversation
	RedisHost      string
	RedisPort      int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		Debug:          getEnv("DEBUG", "") == "true",
		GraphBackend:   getEnv("GRAPH_BACKEND", "sqlite"),
		SQLitePath:     getEnv("SQLITE_PATH", "lifegraph.db"),
		Neo4jURI:       getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:      getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:  getEnv("NEO4J_PASSWORD", "password"),
		LLMBaseURL:     getEnv("LLM_BASE_URL", "http://localhost:4000"),
		LLMAPIKey:      getEnv("LLM_API_KEY", ""),
		ModelID:        getEnv("MODEL_ID", "openrouter/anthropic/claude-3.5-sonnet"),
		TriageTimeout:  time.Duration(getEnvInt("TRIAGE_TIMEOUT_SECONDS", 30)) * time.Second,
		HistoryBackend: getEnv("HISTORY_BACKEND", "memory"),
		HistoryLimit:   getEnvInt("HISTORY_LIMIT", 10),
		RedisHost:      getEnv("REDIS_HOST", "localhost"),
		RedisPort:      getEnvInt("REDIS_PORT", 6379),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	switch c.GraphBackend {
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	case "neo4j":
		if c.Neo4jURI == "" {
			return fmt.Errorf("NEO4J_URI is required for the neo4j backend")
		}
		if c.Neo4jUser == "" {
			return fmt.Errorf("NEO4J_USER is required for the neo4j backend")
		}
		if c.Neo4jPassword == "" {
			return fmt.Errorf("NEO4J_PASSWORD is required for the neo4j backend")
		}
	default:
		return fmt.Errorf("unknown GRAPH_BACKEND: %s", c.GraphBackend)
	}

	switch c.HistoryBackend {
	case "memory":
	case "redis":
		if c.RedisHost == "" {
			return fmt.Errorf("REDIS_HOST is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown HISTORY_BACKEND: %s", c.HistoryBackend)
	}

	if c.LLMBaseURL == "" {
		return fmt.Errorf("LLM_BASE_URL is required")
	}
	if c.ModelID == "" {
		return fmt.Errorf("MODEL_ID is required")
	}
	if c.HistoryLimit < 1 {
		return fmt.Errorf("HISTORY_LIMIT must be at least 1")
	}
	// LLM API key is optional for development (LiteLLM-style proxies accept any key)
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
