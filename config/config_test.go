package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Resolver.Provider != ProviderDNS {
		t.Errorf("expected default provider dns, got %q", cfg.Resolver.Provider)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("expected default metrics addr :9090, got %q", cfg.MetricsAddr)
	}
	if cfg.Tracker.QueryInterval != 30*time.Second {
		t.Errorf("expected tracker defaults applied, got interval %s", cfg.Tracker.QueryInterval)
	}
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	cfg.Resolver.Provider = "zookeeper"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestValidateRequiresStaticService(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	cfg.Resolver.Provider = ProviderStatic
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for static provider without service")
	}
	cfg.Resolver.Static.Service = "brokers"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := `
logging:
  level: debug
tracker:
  query_interval: 10s
  transport_type: amqp
resolver:
  provider: static
  static:
    service: brokers
    port: 61616
    addresses:
      - 10.0.0.1
      - 10.0.0.2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(WithConfigFile(path))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.Logging.Level)
	}
	if cfg.Tracker.QueryInterval != 10*time.Second {
		t.Errorf("expected query interval 10s, got %s", cfg.Tracker.QueryInterval)
	}
	if cfg.Tracker.TransportType != "amqp" {
		t.Errorf("expected transport amqp, got %q", cfg.Tracker.TransportType)
	}
	if cfg.Resolver.Provider != ProviderStatic {
		t.Errorf("expected static provider, got %q", cfg.Resolver.Provider)
	}
	if len(cfg.Resolver.Static.Addresses) != 2 {
		t.Errorf("expected 2 static addresses, got %v", cfg.Resolver.Static.Addresses)
	}
	if cfg.Resolver.Static.Port != 61616 {
		t.Errorf("expected port 61616, got %d", cfg.Resolver.Static.Port)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := `
resolver:
  provider: static
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(WithConfigFile(path)); err == nil {
		t.Error("expected validation error for static provider without service")
	}
}
