package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
backend:
  origin: https://dash.example.com/api
  ws_path_template: /api/ws/{subject}
realtime:
  heartbeat_interval: 20s
  pong_timeout: 3s
session:
  user_id: "42"
  conversation_id: c1
log:
  level: debug
  format: json
health:
  port: 8081
`
	path := writeTempFile(t, "config.yaml", yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Backend.Origin != "https://dash.example.com/api" {
		t.Errorf("Backend.Origin = %q, want %q", cfg.Backend.Origin, "https://dash.example.com/api")
	}
	if cfg.Realtime.HeartbeatInterval != 20*time.Second {
		t.Errorf("Realtime.HeartbeatInterval = %v, want 20s", cfg.Realtime.HeartbeatInterval)
	}
	if cfg.Realtime.PongTimeout != 3*time.Second {
		t.Errorf("Realtime.PongTimeout = %v, want 3s", cfg.Realtime.PongTimeout)
	}
	if cfg.Session.UserID != "42" {
		t.Errorf("Session.UserID = %q, want %q", cfg.Session.UserID, "42")
	}
	if cfg.Session.ConversationID != "c1" {
		t.Errorf("Session.ConversationID = %q, want %q", cfg.Session.ConversationID, "c1")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "json")
	}
	if cfg.Health.Port != 8081 {
		t.Errorf("Health.Port = %d, want 8081", cfg.Health.Port)
	}
}

func TestLoadTOML(t *testing.T) {
	content := `
[backend]
origin = "https://dash.example.com/api"

[realtime]
heartbeat_interval = "15s"
pong_timeout = "2s"
reconnect_max_delay = "10s"

[session]
user_id = "7"
`
	path := writeTempFile(t, "config.toml", content)

	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}

	if cfg.Backend.Origin != "https://dash.example.com/api" {
		t.Errorf("Backend.Origin = %q", cfg.Backend.Origin)
	}
	if cfg.Realtime.HeartbeatInterval != 15*time.Second {
		t.Errorf("Realtime.HeartbeatInterval = %v, want 15s", cfg.Realtime.HeartbeatInterval)
	}
	if cfg.Realtime.ReconnectMaxDelay != 10*time.Second {
		t.Errorf("Realtime.ReconnectMaxDelay = %v, want 10s", cfg.Realtime.ReconnectMaxDelay)
	}
	if cfg.Session.UserID != "7" {
		t.Errorf("Session.UserID = %q, want %q", cfg.Session.UserID, "7")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_INBOX_API_KEY", "secret123")
	t.Setenv("TEST_INBOX_ORIGIN", "https://env.example.com/api")

	yaml := `
backend:
  origin: ${TEST_INBOX_ORIGIN}
  api_key: ${TEST_INBOX_API_KEY}
`
	path := writeTempFile(t, "config.yaml", yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Backend.APIKey != "secret123" {
		t.Errorf("Backend.APIKey = %q, want %q", cfg.Backend.APIKey, "secret123")
	}
	if cfg.Backend.Origin != "https://env.example.com/api" {
		t.Errorf("Backend.Origin = %q, want %q", cfg.Backend.Origin, "https://env.example.com/api")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, "config.yaml", "session:\n  user_id: \"1\"\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Backend.Origin != DefaultOrigin {
		t.Errorf("Backend.Origin = %q, want default %q", cfg.Backend.Origin, DefaultOrigin)
	}
	if cfg.Backend.WSPathTemplate != DefaultWSPathTemplate {
		t.Errorf("Backend.WSPathTemplate = %q, want default %q", cfg.Backend.WSPathTemplate, DefaultWSPathTemplate)
	}
	if cfg.Realtime.HeartbeatInterval != DefaultHeartbeatInterval {
		t.Errorf("Realtime.HeartbeatInterval = %v, want default %v", cfg.Realtime.HeartbeatInterval, DefaultHeartbeatInterval)
	}
	if cfg.Realtime.PongTimeout != DefaultPongTimeout {
		t.Errorf("Realtime.PongTimeout = %v, want default %v", cfg.Realtime.PongTimeout, DefaultPongTimeout)
	}
	if cfg.Realtime.ReconnectBaseDelay != DefaultReconnectBaseDelay {
		t.Errorf("Realtime.ReconnectBaseDelay = %v, want default %v", cfg.Realtime.ReconnectBaseDelay, DefaultReconnectBaseDelay)
	}
	if cfg.Realtime.ReconnectMaxDelay != DefaultReconnectMaxDelay {
		t.Errorf("Realtime.ReconnectMaxDelay = %v, want default %v", cfg.Realtime.ReconnectMaxDelay, DefaultReconnectMaxDelay)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want default %q", cfg.Log.Level, DefaultLogLevel)
	}
	if cfg.Health.Port != 0 {
		t.Errorf("Health.Port = %d, want 0 (disabled)", cfg.Health.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "read config file") {
		t.Errorf("error = %q, want read config file prefix", err)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeTempFile(t, "config.yaml", "backend: [unclosed\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadAndValidateRejects(t *testing.T) {
	yaml := `
realtime:
  heartbeat_interval: 5s
  pong_timeout: 5s
`
	path := writeTempFile(t, "config.yaml", yaml)

	_, err := LoadAndValidate(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.HasPrefix(err.Error(), "validate config: ") {
		t.Errorf("error = %q, want validate config prefix", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(*Config) {},
			wantErr: "",
		},
		{
			name:    "missing origin",
			mutate:  func(c *Config) { c.Backend.Origin = "" },
			wantErr: "backend.origin is required",
		},
		{
			name:    "bad origin scheme",
			mutate:  func(c *Config) { c.Backend.Origin = "ftp://example.com" },
			wantErr: `backend.origin scheme "ftp" must be http, https, ws or wss`,
		},
		{
			name:    "origin without host",
			mutate:  func(c *Config) { c.Backend.Origin = "https:///api" },
			wantErr: "backend.origin must include a host",
		},
		{
			name:    "template without subject",
			mutate:  func(c *Config) { c.Backend.WSPathTemplate = "/api/ws" },
			wantErr: "backend.ws_path_template must contain {subject}",
		},
		{
			name: "pong timeout not below interval",
			mutate: func(c *Config) {
				c.Realtime.HeartbeatInterval = 5 * time.Second
				c.Realtime.PongTimeout = 5 * time.Second
			},
			wantErr: "realtime.pong_timeout must be less than realtime.heartbeat_interval",
		},
		{
			name: "max delay below base",
			mutate: func(c *Config) {
				c.Realtime.ReconnectBaseDelay = 10 * time.Second
				c.Realtime.ReconnectMaxDelay = time.Second
			},
			wantErr: "realtime.reconnect_max_delay must be >= realtime.reconnect_base_delay",
		},
		{
			name:    "negative subscriber buffer",
			mutate:  func(c *Config) { c.Realtime.SubscriberBuffer = -1 },
			wantErr: "realtime.subscriber_buffer must be >= 1",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "trace" },
			wantErr: `log.level "trace" is not one of debug, info, warn, error`,
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: `log.format "xml" is not one of text, json`,
		},
		{
			name:    "health port out of range",
			mutate:  func(c *Config) { c.Health.Port = 70000 },
			wantErr: "health.port must be between 0 and 65535",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
