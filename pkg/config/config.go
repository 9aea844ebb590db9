package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for uiforge-engine.
// Configuration can come from YAML file (config.yaml) or environment
// variables. Environment variables always override YAML values. Secrets
// (API keys, tokens, passwords) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8090"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL with pgvector)
	Database DatabaseConfig `yaml:"database"`

	// AI model endpoints (platform defaults; callers may BYOK per request)
	AI AIConfig `yaml:"ai"`

	// Tool-invocation gateway (optional alternative backend)
	Gateway GatewayConfig `yaml:"gateway"`

	// Retrieval defaults for context enrichment
	Retrieval RetrievalConfig `yaml:"retrieval"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"uiforge"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"uiforge_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// URL builds a connection string for pgx.
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// AIConfig holds platform-default AI model endpoints.
type AIConfig struct {
	LLMBaseURL string `yaml:"llm_base_url" env:"AI_LLM_BASE_URL" env-default:"https://api.openai.com/v1"`
	LLMModel   string `yaml:"llm_model" env:"AI_LLM_MODEL" env-default:"gpt-4o"`
	LLMAPIKey  string `yaml:"-" env:"AI_LLM_API_KEY"` // Secret - not in YAML

	EmbeddingBaseURL    string `yaml:"embedding_base_url" env:"AI_EMBEDDING_BASE_URL" env-default:""`
	EmbeddingModel      string `yaml:"embedding_model" env:"AI_EMBEDDING_MODEL" env-default:"text-embedding-3-small"`
	EmbeddingAPIKey     string `yaml:"-" env:"AI_EMBEDDING_API_KEY"` // Secret - not in YAML
	EmbeddingDimensions int    `yaml:"embedding_dimensions" env:"AI_EMBEDDING_DIMENSIONS" env-default:"1536"`
}

// EffectiveEmbeddingBaseURL returns the embedding endpoint, falling back to
// the LLM endpoint.
func (c *AIConfig) EffectiveEmbeddingBaseURL() string {
	if c.EmbeddingBaseURL != "" {
		return c.EmbeddingBaseURL
	}
	return c.LLMBaseURL
}

// EffectiveEmbeddingAPIKey returns the embedding credential, falling back to
// the LLM credential.
func (c *AIConfig) EffectiveEmbeddingAPIKey() string {
	if c.EmbeddingAPIKey != "" {
		return c.EmbeddingAPIKey
	}
	return c.LLMAPIKey
}

// GatewayConfig holds tool-invocation gateway settings. Both values are
// required for gateway mode; if either is absent the gateway backend is
// reported unavailable.
type GatewayConfig struct {
	Endpoint    string `yaml:"endpoint" env:"GATEWAY_ENDPOINT" env-default:""`
	AccessToken string `yaml:"-" env:"GATEWAY_ACCESS_TOKEN"` // Secret - not in YAML
}

// IsAvailable returns true if gateway mode is configured.
func (c *GatewayConfig) IsAvailable() bool {
	return c.Endpoint != "" && c.AccessToken != ""
}

// RetrievalConfig holds context-enrichment retrieval defaults.
type RetrievalConfig struct {
	MaxGenerations      int     `yaml:"max_generations" env:"RETRIEVAL_MAX_GENERATIONS" env-default:"3"`
	MaxPatterns         int     `yaml:"max_patterns" env:"RETRIEVAL_MAX_PATTERNS" env-default:"2"`
	MinQuality          float64 `yaml:"min_quality" env:"RETRIEVAL_MIN_QUALITY" env-default:"0.7"`
	GenerationThreshold float64 `yaml:"generation_threshold" env:"RETRIEVAL_GENERATION_THRESHOLD" env-default:"0.7"`
	PatternThreshold    float64 `yaml:"pattern_threshold" env:"RETRIEVAL_PATTERN_THRESHOLD" env-default:"0.5"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	return loadFrom("config.yaml", version)
}

func loadFrom(path, version string) (*Config, error) {
	cfg := &Config{Version: version}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.AI.LLMBaseURL == "" {
		return fmt.Errorf("ai.llm_base_url is required")
	}
	if c.AI.LLMModel == "" {
		return fmt.Errorf("ai.llm_model is required")
	}
	if c.Retrieval.MaxGenerations < 0 || c.Retrieval.MaxPatterns < 0 {
		return fmt.Errorf("retrieval limits must be non-negative")
	}
	return nil
}
