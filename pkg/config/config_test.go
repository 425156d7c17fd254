package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const minimalYAML = `
environment: test
server:
  port: 8080
sources:
  fundamentals:
    host: localhost
  quotes:
    base_url: http://localhost:9101
  sentiment:
    base_url: http://localhost:9102
  prediction:
    base_url: http://localhost:9103
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Cache.QuoteTTL != 60*time.Second {
		t.Fatalf("unexpected quote ttl %v", cfg.Cache.QuoteTTL)
	}
	if cfg.Cache.PredictionTTL != time.Hour {
		t.Fatalf("unexpected prediction ttl %v", cfg.Cache.PredictionTTL)
	}
	if cfg.Advisor.MaxRetries != 2 {
		t.Fatalf("unexpected max retries %d", cfg.Advisor.MaxRetries)
	}
	if len(cfg.Sources.Priority) != 4 || cfg.Sources.Priority[0] != "fundamentals" {
		t.Fatalf("unexpected default priority %v", cfg.Sources.Priority)
	}
}

func TestLoadRejectsMissingRequired(t *testing.T) {
	if _, err := Load(writeConfig(t, "environment: test\n")); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadRejectsBadPriority(t *testing.T) {
	cfgYAML := `
environment: test
server:
  port: 8080
sources:
  priority: [fundamentals, nonsense]
  fundamentals:
    host: localhost
  quotes:
    base_url: http://localhost:9101
  sentiment:
    base_url: http://localhost:9102
  prediction:
    base_url: http://localhost:9103
`
	if _, err := Load(writeConfig(t, cfgYAML)); err == nil {
		t.Fatalf("expected priority validation error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("QUOTES_API_KEY", "secret-key")
	cfg, err := LoadWithEnv(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Sources.Quotes.APIKey != "secret-key" {
		t.Fatalf("env override not applied, got %q", cfg.Sources.Quotes.APIKey)
	}
}
