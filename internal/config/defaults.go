package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultOrigin             = "http://localhost:8000/api"
	DefaultWSPathTemplate     = "/api/ws/{subject}"
	DefaultTimeout            = 30 * time.Second
	DefaultMaxRetries         = 3
	DefaultHeartbeatInterval  = 30 * time.Second
	DefaultPongTimeout        = 5 * time.Second
	DefaultReconnectBaseDelay = 1 * time.Second
	DefaultReconnectMaxDelay  = 30 * time.Second
	DefaultHandshakeTimeout   = 10 * time.Second
	DefaultWriteTimeout       = 5 * time.Second
	DefaultBufferSize         = 256
	DefaultSubscriberBuffer   = 64
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
	DefaultHealthPath         = "/health"
)

// ApplyDefaults fills every zero field with its default.
func (c *Config) ApplyDefaults() {
	// Backend defaults
	if c.Backend.Origin == "" {
		c.Backend.Origin = DefaultOrigin
	}
	if c.Backend.WSPathTemplate == "" {
		c.Backend.WSPathTemplate = DefaultWSPathTemplate
	}
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = DefaultTimeout
	}
	if c.Backend.MaxRetries == 0 {
		c.Backend.MaxRetries = DefaultMaxRetries
	}

	// Realtime defaults
	if c.Realtime.HeartbeatInterval == 0 {
		c.Realtime.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.Realtime.PongTimeout == 0 {
		c.Realtime.PongTimeout = DefaultPongTimeout
	}
	if c.Realtime.ReconnectBaseDelay == 0 {
		c.Realtime.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Realtime.ReconnectMaxDelay == 0 {
		c.Realtime.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if c.Realtime.HandshakeTimeout == 0 {
		c.Realtime.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Realtime.WriteTimeout == 0 {
		c.Realtime.WriteTimeout = DefaultWriteTimeout
	}
	if c.Realtime.BufferSize == 0 {
		c.Realtime.BufferSize = DefaultBufferSize
	}
	if c.Realtime.SubscriberBuffer == 0 {
		c.Realtime.SubscriberBuffer = DefaultSubscriberBuffer
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}

	// Health defaults; the port stays 0 (disabled) unless set.
	if c.Health.Path == "" {
		c.Health.Path = DefaultHealthPath
	}
}
