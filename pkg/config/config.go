// Package config loads service configuration from a YAML file with
// environment-variable overrides. Every field has a default, so all three
// binaries run with no config file at all.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings such as
// "30m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Std converts back to time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds configuration for all binaries.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	LLM       LLMConfig       `yaml:"llm"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Neo4j     Neo4jConfig     `yaml:"neo4j"`
	NATS      NATSConfig      `yaml:"nats"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host       string   `yaml:"host"`
	Port       int      `yaml:"port"`
	CORSOrigin string   `yaml:"cors_origin"`
	SessionTTL Duration `yaml:"session_ttl"`
}

// QdrantConfig holds vector index settings.
type QdrantConfig struct {
	Addr       string `yaml:"addr"`
	Collection string `yaml:"collection"`
	Dims       int    `yaml:"dims"`
}

// LLMConfig selects and configures the model provider.
type LLMConfig struct {
	// Provider is "openai" or "ollama".
	Provider   string `yaml:"provider"`
	BaseURL    string `yaml:"base_url"`
	EmbedModel string `yaml:"embed_model"`
	ChatModel  string `yaml:"chat_model"`
	// APIKeyFile is read when ADVISOR_API_KEY is unset.
	APIKeyFile string `yaml:"api_key_file"`
}

// RetrievalConfig tunes the query pipeline.
type RetrievalConfig struct {
	TopK          int     `yaml:"top_k"`
	HistoryWindow int     `yaml:"history_window"`
	Temperature   float32 `yaml:"temperature"`
	MaxTokens     int     `yaml:"max_tokens"`
}

// Neo4jConfig holds category graph settings. Empty URI disables the graph.
type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// NATSConfig holds event settings. Empty URL disables events.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// MetricsConfig holds the metrics endpoint settings.
type MetricsConfig struct {
	Port int `yaml:"port"`
}

// Default returns the production defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:       "0.0.0.0",
			Port:       8080,
			CORSOrigin: "*",
			SessionTTL: Duration(30 * time.Minute),
		},
		Qdrant: QdrantConfig{
			Addr:       "localhost:6334",
			Collection: "ai_tools",
			Dims:       1536,
		},
		LLM: LLMConfig{
			Provider: "openai",
		},
		Retrieval: RetrievalConfig{
			TopK:          4,
			HistoryWindow: 8,
			Temperature:   0.2,
			MaxTokens:     700,
		},
		Metrics: MetricsConfig{
			Port: 9091,
		},
	}
}

// Load builds the effective config: defaults, then the YAML file at path
// (skipped when path is empty), then ADVISOR_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString("ADVISOR_QDRANT_ADDR", &cfg.Qdrant.Addr)
	setString("ADVISOR_QDRANT_COLLECTION", &cfg.Qdrant.Collection)
	setInt("ADVISOR_QDRANT_DIMS", &cfg.Qdrant.Dims)
	setString("ADVISOR_LLM_PROVIDER", &cfg.LLM.Provider)
	setString("ADVISOR_LLM_BASE_URL", &cfg.LLM.BaseURL)
	setString("ADVISOR_EMBED_MODEL", &cfg.LLM.EmbedModel)
	setString("ADVISOR_CHAT_MODEL", &cfg.LLM.ChatModel)
	setString("ADVISOR_NEO4J_URI", &cfg.Neo4j.URI)
	setString("ADVISOR_NEO4J_USER", &cfg.Neo4j.User)
	setString("ADVISOR_NEO4J_PASSWORD", &cfg.Neo4j.Password)
	setString("ADVISOR_NATS_URL", &cfg.NATS.URL)
	setString("ADVISOR_HOST", &cfg.Server.Host)
	setInt("ADVISOR_PORT", &cfg.Server.Port)
	setInt("ADVISOR_METRICS_PORT", &cfg.Metrics.Port)
}

// APIKey resolves the LLM credential: the ADVISOR_API_KEY environment
// variable wins, then the configured secret file. Empty when neither is
// set, which the ollama provider accepts.
func (c LLMConfig) APIKey() (string, error) {
	if v := os.Getenv("ADVISOR_API_KEY"); v != "" {
		return v, nil
	}
	if c.APIKeyFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.APIKeyFile)
	if err != nil {
		return "", fmt.Errorf("read api key file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
