package logger

import "testing"

func TestNewDefault(t *testing.T) {
	l := NewDefault("peertrack")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "peertrack" {
		t.Errorf("expected service 'peertrack', got %q", l.service)
	}
}

func TestNewInvalidLevelFallsBackToInfo(t *testing.T) {
	cfg := &Config{
		Level:  "bogus",
		Format: "json",
		Output: "stdout",
	}
	l := New(cfg, "svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected default format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stdout" {
		t.Errorf("expected default output 'stdout', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp enabled by default")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json"}, false},
		{"bad level", Config{Level: "verbose", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWithComponent(t *testing.T) {
	l := NewDefault("svc").WithComponent("tracker")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestFields(t *testing.T) {
	m := Fields("endpoint", "tcp://10.0.0.1:61616", "failures", 2)
	if m["endpoint"] != "tcp://10.0.0.1:61616" {
		t.Errorf("unexpected endpoint field: %v", m["endpoint"])
	}
	if m["failures"] != 2 {
		t.Errorf("unexpected failures field: %v", m["failures"])
	}
}
