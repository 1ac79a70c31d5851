// Package config loads assistant configuration.
//
// Priority, highest first: environment variables (ASSISTANT_ prefix),
// config file (assistant.yaml in the working directory or ~/.assistant/),
// defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	ErrInvalidProvider  = errors.New("invalid provider")
	ErrInvalidStore     = errors.New("invalid retrieval store")
	ErrInvalidAuditSink = errors.New("invalid audit sink")
	ErrInvalidThreshold = errors.New("invalid token threshold")
)

// Provider identifiers accepted for backends.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"
	ProviderDummy     = "dummy"
)

type BackendConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
}

type RouterConfig struct {
	TokenThreshold int      `mapstructure:"token_threshold"`
	Keywords       []string `mapstructure:"keywords"`
	Encoding       string   `mapstructure:"encoding"`
}

type RetrievalConfig struct {
	Store            string `mapstructure:"store"` // memory, postgres, mongo, neo4j, qdrant
	TopK             int    `mapstructure:"top_k"`
	Dimension        int    `mapstructure:"dimension"`
	PostgresDSN      string `mapstructure:"postgres_dsn"`
	MongoURI         string `mapstructure:"mongo_uri"`
	MongoDB          string `mapstructure:"mongo_db"`
	Neo4jURI         string `mapstructure:"neo4j_uri"`
	Neo4jUser        string `mapstructure:"neo4j_user"`
	Neo4jPass        string `mapstructure:"neo4j_pass"` // SENSITIVE: never log
	QdrantURL        string `mapstructure:"qdrant_url"`
	QdrantCollection string `mapstructure:"qdrant_collection"`
	QdrantAPIKey     string `mapstructure:"qdrant_api_key"` // SENSITIVE: never log
}

type AuditConfig struct {
	Sink       string `mapstructure:"sink"` // log, mongo, none
	QueueDepth int    `mapstructure:"queue_depth"`
	MongoURI   string `mapstructure:"mongo_uri"`
	MongoDB    string `mapstructure:"mongo_db"`
	MongoColl  string `mapstructure:"mongo_collection"`
}

type Config struct {
	LogLevel  string `mapstructure:"log_level"`  // debug, info, warn, error
	LogFormat string `mapstructure:"log_format"` // text, json, console

	Workspace string `mapstructure:"workspace"`

	Fast       BackendConfig   `mapstructure:"fast"`
	Deliberate BackendConfig   `mapstructure:"deliberate"`
	Router     RouterConfig    `mapstructure:"router"`
	Retrieval  RetrievalConfig `mapstructure:"retrieval"`
	Audit      AuditConfig     `mapstructure:"audit"`

	IngestMaxFileBytes int64 `mapstructure:"ingest_max_file_bytes"`

	// UTCPProviders points at a UTCP providers file; when set, the
	// tools it describes are added to the catalog.
	UTCPProviders string `mapstructure:"utcp_providers"`
}

// Load reads assistant.yaml and the environment into a validated Config.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("assistant")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".assistant"))
	}

	setDefaults(v)

	v.SetEnvPrefix("ASSISTANT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("workspace", ".")

	v.SetDefault("fast.provider", ProviderOpenAI)
	v.SetDefault("fast.model", "gpt-4o-mini")
	v.SetDefault("deliberate.provider", ProviderAnthropic)
	v.SetDefault("deliberate.model", "claude-sonnet-4-20250514")

	v.SetDefault("router.token_threshold", 256)
	v.SetDefault("router.encoding", "cl100k_base")

	v.SetDefault("retrieval.store", "memory")
	v.SetDefault("retrieval.top_k", 4)
	v.SetDefault("retrieval.dimension", 768)
	v.SetDefault("retrieval.mongo_db", "assistant")
	v.SetDefault("retrieval.neo4j_user", "neo4j")
	v.SetDefault("retrieval.qdrant_url", "http://localhost:6333")
	v.SetDefault("retrieval.qdrant_collection", "assistant_context")

	v.SetDefault("audit.sink", "log")
	v.SetDefault("audit.queue_depth", 256)
	v.SetDefault("audit.mongo_db", "assistant")
	v.SetDefault("audit.mongo_collection", "audit_events")

	v.SetDefault("ingest_max_file_bytes", 10<<20)
}

func validProvider(p string) bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderOllama, ProviderDummy:
		return true
	}
	return false
}

func (c *Config) Validate() error {
	if !validProvider(c.Fast.Provider) {
		return fmt.Errorf("%w: fast backend %q", ErrInvalidProvider, c.Fast.Provider)
	}
	if !validProvider(c.Deliberate.Provider) {
		return fmt.Errorf("%w: deliberate backend %q", ErrInvalidProvider, c.Deliberate.Provider)
	}
	if c.Router.TokenThreshold <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidThreshold, c.Router.TokenThreshold)
	}
	switch c.Retrieval.Store {
	case "memory", "postgres", "mongo", "neo4j", "qdrant":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStore, c.Retrieval.Store)
	}
	switch c.Audit.Sink {
	case "log", "mongo", "none":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAuditSink, c.Audit.Sink)
	}
	return nil
}
