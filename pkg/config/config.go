package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Graph configuration
	Graph GraphConfig `mapstructure:"graph"`

	// Adapter configuration
	Adapter AdapterConfig `mapstructure:"adapter"`

	// Fusion configuration
	Fusion FusionConfig `mapstructure:"fusion"`

	// Rerank configuration
	Rerank RerankConfig `mapstructure:"rerank"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// Alert configuration
	Alert AlertConfig `mapstructure:"alert"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// GraphConfig holds knowledge-graph snapshot configuration
type GraphConfig struct {
	// Source selects where the graph is loaded from: file, neo4j
	Source       string `mapstructure:"source"`
	SnapshotPath string `mapstructure:"snapshot_path"`

	// TraversalMode: first-wins (reference behavior) or best-score
	TraversalMode string `mapstructure:"traversal_mode"`

	Neo4j Neo4jConfig `mapstructure:"neo4j"`
}

// Neo4jConfig holds connection settings for the neo4j graph loader
type Neo4jConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// AdapterConfig holds configuration for the document-index adapter
type AdapterConfig struct {
	BaseURL        string      `mapstructure:"base_url"`
	APIKey         string      `mapstructure:"api_key"`
	TimeoutSeconds int         `mapstructure:"timeout_seconds"`
	Cache          CacheConfig `mapstructure:"cache"`
}

// CacheConfig holds the on-disk record cache settings
type CacheConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Dir        string `mapstructure:"dir"`
	TTLMinutes int    `mapstructure:"ttl_minutes"`
}

// FusionConfig holds result-fusion settings
type FusionConfig struct {
	MaxResults          int  `mapstructure:"max_results"`
	IncludeGraphContext bool `mapstructure:"include_graph_context"`
	EnrichPerResult     bool `mapstructure:"enrich_per_result"`
	GraphSearchDepth    int  `mapstructure:"graph_search_depth"`

	// SourceTimeoutMS is the per-source dispatch budget in milliseconds
	SourceTimeoutMS int `mapstructure:"source_timeout_ms"`

	Weights Weights `mapstructure:"weights"`

	// WeightsProfile optionally points at a YAML file overriding Weights
	WeightsProfile string `mapstructure:"weights_profile"`
}

// Weights are the per-source fusion multipliers
type Weights struct {
	Vector  float64 `mapstructure:"vector" yaml:"vector"`
	BM25    float64 `mapstructure:"bm25" yaml:"bm25"`
	Graph   float64 `mapstructure:"graph" yaml:"graph"`
	Keyword float64 `mapstructure:"keyword" yaml:"keyword"`
	Title   float64 `mapstructure:"title" yaml:"title"`
}

// RerankConfig holds the optional cross-encoder reranker settings
type RerankConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Model          string `mapstructure:"model"`
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	MaxConcurrency int    `mapstructure:"max_concurrency"`
	TopN           int    `mapstructure:"top_n"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
}

// AlertConfig holds configuration for alerting
type AlertConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	SMTPHost string   `mapstructure:"smtp_host"`
	SMTPPort int      `mapstructure:"smtp_port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

// CircuitBreakerConfig holds configuration for per-source circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(config)

	if config.Fusion.WeightsProfile != "" {
		weights, err := LoadWeightsProfile(config.Fusion.WeightsProfile)
		if err != nil {
			return nil, fmt.Errorf("unable to load weights profile: %w", err)
		}
		config.Fusion.Weights = *weights
	}

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// Graph defaults
	viper.SetDefault("graph.source", "file")
	viper.SetDefault("graph.snapshot_path", "./data/knowledge-graph.json")
	viper.SetDefault("graph.traversal_mode", "first-wins")
	viper.SetDefault("graph.neo4j.uri", "bolt://localhost:7687")
	viper.SetDefault("graph.neo4j.database", "neo4j")

	// Adapter defaults
	viper.SetDefault("adapter.base_url", "http://localhost:9200")
	viper.SetDefault("adapter.timeout_seconds", 10)
	viper.SetDefault("adapter.cache.enabled", false)
	viper.SetDefault("adapter.cache.dir", "./data/record-cache")
	viper.SetDefault("adapter.cache.ttl_minutes", 15)

	// Fusion defaults
	viper.SetDefault("fusion.max_results", 20)
	viper.SetDefault("fusion.include_graph_context", true)
	viper.SetDefault("fusion.enrich_per_result", false)
	viper.SetDefault("fusion.graph_search_depth", 3)
	viper.SetDefault("fusion.source_timeout_ms", 3000)
	viper.SetDefault("fusion.weights.vector", 0.4)
	viper.SetDefault("fusion.weights.bm25", 0.3)
	viper.SetDefault("fusion.weights.graph", 0.2)
	viper.SetDefault("fusion.weights.keyword", 0.05)
	viper.SetDefault("fusion.weights.title", 0.05)

	// Rerank defaults
	viper.SetDefault("rerank.enabled", false)
	viper.SetDefault("rerank.model", "gpt-4o-mini")
	viper.SetDefault("rerank.max_concurrency", 10)
	viper.SetDefault("rerank.top_n", 20)

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", true)
	viper.SetDefault("circuit_breaker.max_requests", 3)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	// Telemetry defaults
	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("telemetry.parquet_path", fmt.Sprintf("%s/.docsonar/telemetry", home))
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if baseURL := os.Getenv("INDEX_BASE_URL"); baseURL != "" {
		config.Adapter.BaseURL = baseURL
	}
	if apiKey := os.Getenv("INDEX_API_KEY"); apiKey != "" {
		config.Adapter.APIKey = apiKey
	}

	if path := os.Getenv("GRAPH_SNAPSHOT_PATH"); path != "" {
		config.Graph.SnapshotPath = path
	}
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		config.Graph.Neo4j.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		config.Graph.Neo4j.Username = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		config.Graph.Neo4j.Password = pass
	}

	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.Rerank.APIKey = apiKey
	}

	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		viper.Set("server.port", port)
	}

	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}
