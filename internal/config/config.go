// Package config handles application configuration using Viper.
// Viper supports YAML files, environment variables, and defaults — merged in priority order.
// Go convention: configuration is loaded into structs, not accessed as raw key-value pairs.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration struct. Nested structs organize related settings.
// `mapstructure` tags tell Viper how to map YAML/env keys to struct fields.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Providers  ProvidersConfig  `mapstructure:"providers"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Normalizer NormalizerConfig `mapstructure:"normalizer"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type CORSConfig struct {
	// AllowedOrigins lists origins granted CORS access. "*" allows any origin,
	// which is what the static front-end deployment needs.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type AuthConfig struct {
	AdminKeys []string `mapstructure:"admin_keys"`
}

// ProvidersConfig controls the LLM fallback chain.
type ProvidersConfig struct {
	// Order controls which providers are tried and in what order.
	// First entry is primary, rest are fallbacks. Example: ["glm", "gemini"].
	Order          []string        `mapstructure:"order"`
	GLM            GLMConfig       `mapstructure:"glm"`
	Gemini         GeminiConfig    `mapstructure:"gemini"`
	Anthropic      AnthropicConfig `mapstructure:"anthropic"`
	TimeoutSeconds int             `mapstructure:"timeout_seconds"`
	// RatePerMinute bounds outbound LLM calls across all providers,
	// independent of the per-client HTTP rate limit.
	RatePerMinute int `mapstructure:"rate_per_minute"`
}

// GLMConfig configures the Zhipu GLM provider. GLM exposes an OpenAI-compatible
// chat-completions API, so only the base URL differs from stock OpenAI.
type GLMConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api_key"`
	TextModel  string `mapstructure:"text_model"`
	ImageModel string `mapstructure:"image_model"`
}

type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// RateLimitConfig is the per-client fixed-window policy shared by both endpoints.
// Each endpoint gets its own store instance, so the budgets are independent.
type RateLimitConfig struct {
	Limit         int `mapstructure:"limit"`
	WindowSeconds int `mapstructure:"window_seconds"`
}

// NormalizerConfig is the point-content length band, in runes.
type NormalizerConfig struct {
	PointMin int `mapstructure:"point_min"`
	PointMax int `mapstructure:"point_max"`
}

type StorageConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from a YAML file and environment variables.
// In Go, functions return errors as the last return value — callers must check them.
// This pattern replaces try/catch: if err != nil { handle it }.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults — these apply when neither file nor env provides a value.
	// Every key needs a default (even an empty one): Unmarshal only sees keys
	// viper already knows about, so an env-only key with no default would
	// never reach the struct.
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("auth.admin_keys", []string{})
	v.SetDefault("providers.order", []string{"glm", "gemini"})
	v.SetDefault("providers.glm.api_key", "")
	v.SetDefault("providers.glm.model", "glm-4-flash")
	v.SetDefault("providers.glm.base_url", "https://open.bigmodel.cn/api/paas/v4")
	v.SetDefault("providers.gemini.api_key", "")
	v.SetDefault("providers.gemini.text_model", "gemini-2.5-flash")
	v.SetDefault("providers.gemini.image_model", "gemini-2.5-flash-image-preview")
	v.SetDefault("providers.anthropic.api_key", "")
	v.SetDefault("providers.anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("providers.timeout_seconds", 30)
	v.SetDefault("providers.rate_per_minute", 10)
	v.SetDefault("rate_limit.limit", 10)
	v.SetDefault("rate_limit.window_seconds", 60)
	v.SetDefault("normalizer.point_min", 80)
	v.SetDefault("normalizer.point_max", 120)
	v.SetDefault("storage.database_path", "./storage/card-service.db")
	v.SetDefault("log.level", "info")

	// Read from YAML config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Read config file (ignore "not found" — defaults + env are enough)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Environment variables override everything.
	// CARD_ prefix + nested keys: CARD_SERVER_PORT=9090 → server.port=9090,
	// CARD_PROVIDERS_GLM_API_KEY → providers.glm.api_key
	v.SetEnvPrefix("CARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal into our Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Address returns the listen address string like "0.0.0.0:8080".
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
