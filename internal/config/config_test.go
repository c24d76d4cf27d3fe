package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := cfg.Server.Address(); got != "0.0.0.0:8080" {
		t.Errorf("address = %q, want 0.0.0.0:8080", got)
	}
	if len(cfg.Providers.Order) != 2 || cfg.Providers.Order[0] != "glm" || cfg.Providers.Order[1] != "gemini" {
		t.Errorf("providers.order = %v, want [glm gemini]", cfg.Providers.Order)
	}
	if cfg.Providers.TimeoutSeconds != 30 {
		t.Errorf("timeout_seconds = %d, want 30", cfg.Providers.TimeoutSeconds)
	}
	if cfg.RateLimit.Limit != 10 || cfg.RateLimit.WindowSeconds != 60 {
		t.Errorf("rate_limit = %+v, want limit 10 / window 60", cfg.RateLimit)
	}
	if cfg.Normalizer.PointMin != 80 || cfg.Normalizer.PointMax != 120 {
		t.Errorf("normalizer band = %+v, want 80–120", cfg.Normalizer)
	}
	if cfg.Providers.GLM.APIKey != "" || cfg.Providers.Gemini.APIKey != "" {
		t.Error("API keys must default to empty")
	}
}

// Environment variables are the primary deployment channel for secrets, so a
// key supplied only via env — with no config file at all — must land in the
// struct.
func TestLoad_EnvOnlyKeys(t *testing.T) {
	t.Setenv("CARD_PROVIDERS_GLM_API_KEY", "glm-key-from-env")
	t.Setenv("CARD_PROVIDERS_GEMINI_API_KEY", "AIzaFromEnv")
	t.Setenv("CARD_PROVIDERS_ANTHROPIC_API_KEY", "sk-ant-from-env")
	t.Setenv("CARD_AUTH_ADMIN_KEYS", "ops-key-1,ops-key-2")
	t.Setenv("CARD_SERVER_PORT", "9191")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Providers.GLM.APIKey != "glm-key-from-env" {
		t.Errorf("glm api_key = %q, want value from env", cfg.Providers.GLM.APIKey)
	}
	if cfg.Providers.Gemini.APIKey != "AIzaFromEnv" {
		t.Errorf("gemini api_key = %q, want value from env", cfg.Providers.Gemini.APIKey)
	}
	if cfg.Providers.Anthropic.APIKey != "sk-ant-from-env" {
		t.Errorf("anthropic api_key = %q, want value from env", cfg.Providers.Anthropic.APIKey)
	}
	if len(cfg.Auth.AdminKeys) != 2 || cfg.Auth.AdminKeys[0] != "ops-key-1" {
		t.Errorf("admin_keys = %v, want both keys from env", cfg.Auth.AdminKeys)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("port = %d, want 9191", cfg.Server.Port)
	}
}

func TestLoad_FileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 3000
providers:
  order: ["gemini"]
  glm:
    api_key: glm-key-from-file
rate_limit:
  limit: 5
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("port = %d, want 3000 from file", cfg.Server.Port)
	}
	if len(cfg.Providers.Order) != 1 || cfg.Providers.Order[0] != "gemini" {
		t.Errorf("providers.order = %v, want [gemini]", cfg.Providers.Order)
	}
	if cfg.Providers.GLM.APIKey != "glm-key-from-file" {
		t.Errorf("glm api_key = %q, want value from file", cfg.Providers.GLM.APIKey)
	}
	if cfg.RateLimit.Limit != 5 {
		t.Errorf("rate_limit.limit = %d, want 5 from file", cfg.RateLimit.Limit)
	}
	// Unset file keys keep their defaults.
	if cfg.RateLimit.WindowSeconds != 60 {
		t.Errorf("window_seconds = %d, want default 60", cfg.RateLimit.WindowSeconds)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
providers:
  glm:
    api_key: glm-key-from-file
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv("CARD_PROVIDERS_GLM_API_KEY", "glm-key-from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Providers.GLM.APIKey != "glm-key-from-env" {
		t.Errorf("glm api_key = %q, env must override file", cfg.Providers.GLM.APIKey)
	}
}
