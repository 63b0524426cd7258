package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
)

type Config struct {
	APIPort   string `mapstructure:"api_port"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	PostgresDSN string `mapstructure:"postgres_dsn"`

	OllamaURL             string        `mapstructure:"ollama_url"`
	OllamaGenModel        string        `mapstructure:"ollama_gen_model"`
	OllamaEmbedModel      string        `mapstructure:"ollama_embed_model"`
	OllamaGenerateTimeout time.Duration `mapstructure:"ollama_generate_timeout"`
	OllamaHealthTimeout   time.Duration `mapstructure:"ollama_health_timeout"`

	QdrantURL        string `mapstructure:"qdrant_url"`
	QdrantCollection string `mapstructure:"qdrant_collection"`

	TranslationEnabled bool          `mapstructure:"enable_translation"`
	TranslateURL       string        `mapstructure:"translate_url"`
	TranslateAPIKey    string        `mapstructure:"translate_api_key"`
	TranslateTimeout   time.Duration `mapstructure:"translate_timeout"`

	RedisAddr           string        `mapstructure:"redis_addr"`
	RedisPassword       string        `mapstructure:"redis_password"`
	RedisDB             int           `mapstructure:"redis_db"`
	TranslationCacheTTL time.Duration `mapstructure:"translation_cache_ttl"`

	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`

	RAGRelevanceThreshold float64 `mapstructure:"rag_relevance_threshold"`
	RAGDefaultK           int     `mapstructure:"rag_default_k"`
	RAGContextChunks      int     `mapstructure:"rag_context_chunks"`
	RAGContextChars       int     `mapstructure:"rag_context_chars"`
	RAGTemperature        float64 `mapstructure:"rag_temperature"`

	APIRateLimitRPS     float64       `mapstructure:"api_rate_limit_rps"`
	APIRateLimitBurst   int           `mapstructure:"api_rate_limit_burst"`
	APIMaxInFlight      int           `mapstructure:"api_max_in_flight"`
	APIBackpressureWait time.Duration `mapstructure:"api_backpressure_wait"`
	APICORSOrigins      []string      `mapstructure:"api_cors_origins"`

	OTELEnabled     bool   `mapstructure:"otel_enabled"`
	OTELEndpoint    string `mapstructure:"otel_exporter_otlp_endpoint"`
	OTELServiceName string `mapstructure:"otel_service_name"`

	IngestMetricsPort string `mapstructure:"ingest_metrics_port"`
}

var defaults = map[string]any{
	"api_port":   "8000",
	"log_level":  "info",
	"log_format": "json",

	"postgres_dsn": "",

	"ollama_url":              "http://localhost:11434",
	"ollama_gen_model":        "llama3.2:3b",
	"ollama_embed_model":      "nomic-embed-text",
	"ollama_generate_timeout": "60s",
	"ollama_health_timeout":   "5s",

	"qdrant_url":        "http://localhost:6333",
	"qdrant_collection": "financial_knowledge",

	"enable_translation": true,
	"translate_url":      "http://localhost:5000",
	"translate_api_key":  "",
	"translate_timeout":  "15s",

	"redis_addr":            "",
	"redis_password":        "",
	"redis_db":              0,
	"translation_cache_ttl": "24h",

	"chunk_size":    1250,
	"chunk_overlap": 250,

	"rag_relevance_threshold": 0.70,
	"rag_default_k":           domain.DefaultTopK,
	"rag_context_chunks":      1,
	"rag_context_chars":       500,
	"rag_temperature":         0.7,

	"api_rate_limit_rps":    0.0,
	"api_rate_limit_burst":  0,
	"api_max_in_flight":     0,
	"api_backpressure_wait": "250ms",
	"api_cors_origins":      []string{"http://localhost:3000", "http://localhost:5173"},

	"otel_enabled":                false,
	"otel_exporter_otlp_endpoint": "",
	"otel_service_name":           "financeyatra",
	"ingest_metrics_port":         "",
}

// Load reads configuration from defaults and environment variables.
func Load() (Config, error) {
	return LoadFile("")
}

// LoadFile layers an optional YAML or JSON file between the defaults and the
// environment. Environment variables always win.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.RAGRelevanceThreshold < 0 || c.RAGRelevanceThreshold > 1 {
		return fmt.Errorf("rag_relevance_threshold must be within [0,1], got %v", c.RAGRelevanceThreshold)
	}
	if c.RAGDefaultK < domain.MinTopK || c.RAGDefaultK > domain.MaxTopK {
		return fmt.Errorf("rag_default_k must be within [%d,%d], got %d", domain.MinTopK, domain.MaxTopK, c.RAGDefaultK)
	}
	if c.RAGContextChunks < 1 {
		return fmt.Errorf("rag_context_chunks must be positive, got %d", c.RAGContextChunks)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}

// Pipeline derives the immutable settings shared by the query pipeline.
func (c Config) Pipeline() domain.PipelineSettings {
	settings := domain.DefaultPipelineSettings()
	settings.TranslationEnabled = c.TranslationEnabled
	settings.RelevanceThreshold = c.RAGRelevanceThreshold
	settings.DefaultTopK = c.RAGDefaultK
	if c.RAGContextChunks > 0 {
		settings.ContextChunks = c.RAGContextChunks
	}
	if c.RAGContextChars > 0 {
		settings.ContextCharLimit = c.RAGContextChars
	}
	if c.RAGTemperature > 0 {
		settings.Temperature = c.RAGTemperature
	}
	return settings
}
