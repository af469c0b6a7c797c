package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if err := c.Backend.validate(); err != nil {
		return err
	}
	if err := c.Realtime.validate(); err != nil {
		return err
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q is not one of text, json", c.Log.Format)
	}

	if c.Health.Port < 0 || c.Health.Port > 65535 {
		return errors.New("health.port must be between 0 and 65535")
	}
	if !strings.HasPrefix(c.Health.Path, "/") {
		return errors.New("health.path must start with /")
	}

	return nil
}

func (b *BackendConfig) validate() error {
	if b.Origin == "" {
		return errors.New("backend.origin is required")
	}
	u, err := url.Parse(b.Origin)
	if err != nil {
		return fmt.Errorf("backend.origin is not a valid URL: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("backend.origin scheme %q must be http, https, ws or wss", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("backend.origin must include a host")
	}
	if !strings.Contains(b.WSPathTemplate, "{subject}") {
		return errors.New("backend.ws_path_template must contain {subject}")
	}
	if b.Timeout <= 0 {
		return errors.New("backend.timeout must be > 0")
	}
	if b.MaxRetries < 0 {
		return errors.New("backend.max_retries must be >= 0")
	}
	return nil
}

func (r *RealtimeConfig) validate() error {
	if r.HeartbeatInterval <= 0 {
		return errors.New("realtime.heartbeat_interval must be > 0")
	}
	if r.PongTimeout <= 0 {
		return errors.New("realtime.pong_timeout must be > 0")
	}
	if r.PongTimeout >= r.HeartbeatInterval {
		return errors.New("realtime.pong_timeout must be less than realtime.heartbeat_interval")
	}
	if r.ReconnectBaseDelay <= 0 {
		return errors.New("realtime.reconnect_base_delay must be > 0")
	}
	if r.ReconnectMaxDelay < r.ReconnectBaseDelay {
		return errors.New("realtime.reconnect_max_delay must be >= realtime.reconnect_base_delay")
	}
	if r.BufferSize < 1 {
		return errors.New("realtime.buffer_size must be >= 1")
	}
	if r.SubscriberBuffer < 1 {
		return errors.New("realtime.subscriber_buffer must be >= 1")
	}
	return nil
}
