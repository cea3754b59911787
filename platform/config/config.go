// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
	IsDatabaseEnabled() bool
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetChatRateLimitPerMinute() int
}

// PricingConfig provides settings for the pricing sheet provider.
type PricingConfig interface {
	GetPricingSheetURL() string
	GetPricingSheetPath() string
	GetPricingRefreshInterval() time.Duration
	GetPricingFetchTimeout() time.Duration
	GetPricingKeyColumns() []string
	GetPricingCostColumn() string
	GetPricingSlabColumn() string
	GetPricingMaterialColumn() string
	GetPricingPolicyFile() string
}

// LLMConfig provides settings for the OpenAI-compatible chat model.
type LLMConfig interface {
	GetMoonshotAPIKey() string
	GetMoonshotBaseURL() string
	GetMoonshotModel() string
	GetLLMTimeout() time.Duration
	IsLLMEnabled() bool
}

// SchedulerConfig provides settings for the asynq queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// SessionConfig provides settings for Redis-held chat sessions and jobs.
type SessionConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetChatSessionTTL() time.Duration
	GetNarrativeJobTTL() time.Duration
	IsRedisEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                    string
	HTTPAddr               string
	DatabaseURL            string
	CORSAllowAll           bool
	CORSOrigins            []string
	CORSAllowCreds         bool
	ChatRateLimitPerMinute int
	PricingSheetURL        string
	PricingSheetPath       string
	PricingRefreshInterval time.Duration
	PricingFetchTimeout    time.Duration
	PricingKeyColumns      []string
	PricingCostColumn      string
	PricingSlabColumn      string
	PricingMaterialColumn  string
	PricingPolicyFile      string
	MoonshotAPIKey         string
	MoonshotBaseURL        string
	MoonshotModel          string
	LLMTimeout             time.Duration
	RedisURL               string
	RedisTLSInsecure       bool
	AsynqQueueName         string
	AsynqConcurrency       int
	ChatSessionTTL         time.Duration
	NarrativeJobTTL        time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string  { return c.DatabaseURL }
func (c *Config) IsDatabaseEnabled() bool { return c.DatabaseURL != "" }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string            { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool          { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string       { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool        { return c.CORSAllowCreds }
func (c *Config) GetChatRateLimitPerMinute() int { return c.ChatRateLimitPerMinute }

// PricingConfig implementation
func (c *Config) GetPricingSheetURL() string               { return c.PricingSheetURL }
func (c *Config) GetPricingSheetPath() string              { return c.PricingSheetPath }
func (c *Config) GetPricingRefreshInterval() time.Duration { return c.PricingRefreshInterval }
func (c *Config) GetPricingFetchTimeout() time.Duration    { return c.PricingFetchTimeout }
func (c *Config) GetPricingKeyColumns() []string           { return c.PricingKeyColumns }
func (c *Config) GetPricingCostColumn() string             { return c.PricingCostColumn }
func (c *Config) GetPricingSlabColumn() string             { return c.PricingSlabColumn }
func (c *Config) GetPricingMaterialColumn() string         { return c.PricingMaterialColumn }
func (c *Config) GetPricingPolicyFile() string             { return c.PricingPolicyFile }

// LLMConfig implementation
func (c *Config) GetMoonshotAPIKey() string    { return c.MoonshotAPIKey }
func (c *Config) GetMoonshotBaseURL() string   { return c.MoonshotBaseURL }
func (c *Config) GetMoonshotModel() string     { return c.MoonshotModel }
func (c *Config) GetLLMTimeout() time.Duration { return c.LLMTimeout }
func (c *Config) IsLLMEnabled() bool           { return c.MoonshotAPIKey != "" }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// SessionConfig implementation
func (c *Config) GetChatSessionTTL() time.Duration  { return c.ChatSessionTTL }
func (c *Config) GetNarrativeJobTTL() time.Duration { return c.NarrativeJobTTL }
func (c *Config) IsRedisEnabled() bool              { return c.RedisURL != "" }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                    getEnv("APP_ENV", "development"),
		HTTPAddr:               getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		CORSAllowAll:           corsAllowAll,
		CORSOrigins:            corsOrigins,
		CORSAllowCreds:         strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		ChatRateLimitPerMinute: mustInt(getEnv("CHAT_RATE_LIMIT_PER_MINUTE", "30")),
		PricingSheetURL:        getEnv("PRICING_SHEET_URL", ""),
		PricingSheetPath:       getEnv("PRICING_SHEET_PATH", ""),
		PricingRefreshInterval: mustDuration(getEnv("PRICING_REFRESH_INTERVAL", "15m")),
		PricingFetchTimeout:    mustDuration(getEnv("PRICING_FETCH_TIMEOUT", "10s")),
		PricingKeyColumns:      splitCSV(getEnv("PRICING_KEY_COLUMNS", "ColorName,Name")),
		PricingCostColumn:      getEnv("PRICING_COST_COLUMN", "CostPerArea"),
		PricingSlabColumn:      getEnv("PRICING_SLAB_COLUMN", "UnitsPerSlab"),
		PricingMaterialColumn:  getEnv("PRICING_MATERIAL_COLUMN", "Material"),
		PricingPolicyFile:      getEnv("PRICING_POLICY_FILE", ""),
		MoonshotAPIKey:         getEnv("MOONSHOT_API_KEY", ""),
		MoonshotBaseURL:        getEnv("MOONSHOT_BASE_URL", ""),
		MoonshotModel:          getEnv("MOONSHOT_MODEL", ""),
		LLMTimeout:             mustDuration(getEnv("LLM_TIMEOUT", "30s")),
		RedisURL:               getEnv("REDIS_URL", ""),
		RedisTLSInsecure:       strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:         getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:       mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		ChatSessionTTL:         mustDuration(getEnv("CHAT_SESSION_TTL", "24h")),
		NarrativeJobTTL:        mustDuration(getEnv("NARRATIVE_JOB_TTL", "24h")),
	}

	if cfg.PricingSheetURL != "" && cfg.PricingSheetPath != "" {
		return nil, fmt.Errorf("PRICING_SHEET_URL and PRICING_SHEET_PATH are mutually exclusive")
	}
	if len(cfg.PricingKeyColumns) == 0 {
		return nil, fmt.Errorf("PRICING_KEY_COLUMNS must name at least one column")
	}
	if cfg.PricingFetchTimeout <= 0 {
		cfg.PricingFetchTimeout = 10 * time.Second
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return parsed
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
