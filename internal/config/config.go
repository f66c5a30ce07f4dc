package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported document store backends.
const (
	StorePostgres      = "postgres"
	StoreElasticsearch = "elasticsearch"
	StoreMemory        = "memory"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// ElasticsearchConfig holds connection settings for the Elasticsearch document store.
type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
}

// RedisConfig holds connection settings for the record cache.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

// WebhookConfig describes the enrichment webhook the submissions are relayed to.
type WebhookConfig struct {
	URL      string
	Timeout  time.Duration
	Audience string
}

// Config aggregates application-wide configuration values.
type Config struct {
	Port            string
	DocumentStore   string
	DatabaseURL     string
	DocumentTable   string
	MemorySeedFile  string
	Elasticsearch   ElasticsearchConfig
	Redis           RedisConfig
	Webhook         WebhookConfig
	RateLimitSubmit RateLimitConfig
	LogLevel        string
	LogFormat       string
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "5000")
	v.SetDefault("DOCUMENT_STORE", StorePostgres)
	v.SetDefault("DOCUMENT_TABLE", "bot_data")
	v.SetDefault("ELASTICSEARCH_ADDRESSES", "http://localhost:9200")
	v.SetDefault("ELASTICSEARCH_INDEX", "bot_data")
	v.SetDefault("REDIS_DB", "0")
	v.SetDefault("CACHE_TTL", "10m")
	v.SetDefault("WEBHOOK_TIMEOUT", "10s")
	v.SetDefault("RATE_LIMIT_SUBMIT", "5/min")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	return v
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	v := newViper()

	cfg := &Config{
		Port:           v.GetString("PORT"),
		DocumentStore:  strings.ToLower(strings.TrimSpace(v.GetString("DOCUMENT_STORE"))),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		DocumentTable:  v.GetString("DOCUMENT_TABLE"),
		MemorySeedFile: strings.TrimSpace(v.GetString("MEMORY_SEED_FILE")),
		Elasticsearch: ElasticsearchConfig{
			Addresses: splitList(v.GetString("ELASTICSEARCH_ADDRESSES")),
			Username:  v.GetString("ELASTICSEARCH_USERNAME"),
			Password:  v.GetString("ELASTICSEARCH_PASSWORD"),
			Index:     v.GetString("ELASTICSEARCH_INDEX"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		Webhook: WebhookConfig{
			URL:      strings.TrimSpace(v.GetString("WEBHOOK_URL")),
			Audience: strings.TrimSpace(v.GetString("WEBHOOK_AUDIENCE")),
		},
		LogLevel:  strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat: strings.ToLower(v.GetString("LOG_FORMAT")),
	}

	switch cfg.DocumentStore {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the %s document store", StorePostgres)
		}
	case StoreElasticsearch:
		if len(cfg.Elasticsearch.Addresses) == 0 {
			return nil, fmt.Errorf("ELASTICSEARCH_ADDRESSES is required for the %s document store", StoreElasticsearch)
		}
	case StoreMemory:
	default:
		return nil, fmt.Errorf("unsupported DOCUMENT_STORE %q", cfg.DocumentStore)
	}

	if cfg.Webhook.URL == "" {
		return nil, fmt.Errorf("WEBHOOK_URL is required")
	}

	db, err := strconv.Atoi(strings.TrimSpace(v.GetString("REDIS_DB")))
	if err != nil || db < 0 {
		return nil, fmt.Errorf("invalid REDIS_DB value: %q", v.GetString("REDIS_DB"))
	}
	cfg.Redis.DB = db

	if cfg.Redis.TTL, err = parseDuration(v.GetString("CACHE_TTL")); err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL value: %w", err)
	}
	if cfg.Webhook.Timeout, err = parseDuration(v.GetString("WEBHOOK_TIMEOUT")); err != nil {
		return nil, fmt.Errorf("invalid WEBHOOK_TIMEOUT value: %w", err)
	}

	rl, err := parseRateLimit(v.GetString("RATE_LIMIT_SUBMIT"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SUBMIT value: %w", err)
	}
	cfg.RateLimitSubmit = rl

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func parseDuration(input string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(input))
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", input)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
