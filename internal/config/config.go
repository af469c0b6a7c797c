package config

import "time"

// Config is the root configuration for an inboxlive client.
type Config struct {
	Backend  BackendConfig  `yaml:"backend" toml:"backend"`
	Realtime RealtimeConfig `yaml:"realtime" toml:"realtime"`
	Session  SessionConfig  `yaml:"session" toml:"session"`
	Log      LogConfig      `yaml:"log" toml:"log"`
	Health   HealthConfig   `yaml:"health" toml:"health"`
}

// BackendConfig locates the messaging backend.
type BackendConfig struct {
	Origin         string        `yaml:"origin" toml:"origin"`                     // e.g. https://dash.example.com/api
	WSPathTemplate string        `yaml:"ws_path_template" toml:"ws_path_template"` // must contain {subject}
	APIKey         string        `yaml:"api_key" toml:"api_key"`                   // sent as X-API-Key when set
	Timeout        time.Duration `yaml:"timeout" toml:"timeout"`                   // REST request timeout
	MaxRetries     int           `yaml:"max_retries" toml:"max_retries"`
}

// RealtimeConfig holds Connection Manager settings.
type RealtimeConfig struct {
	HeartbeatInterval  time.Duration `yaml:"heartbeat_interval" toml:"heartbeat_interval"`
	PongTimeout        time.Duration `yaml:"pong_timeout" toml:"pong_timeout"`
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay" toml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay" toml:"reconnect_max_delay"`
	HandshakeTimeout   time.Duration `yaml:"handshake_timeout" toml:"handshake_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout" toml:"write_timeout"`
	BufferSize         int           `yaml:"buffer_size" toml:"buffer_size"`             // inbound frames per socket
	SubscriberBuffer   int           `yaml:"subscriber_buffer" toml:"subscriber_buffer"` // events per subscriber
}

// SessionConfig identifies the dashboard user.
type SessionConfig struct {
	UserID         string `yaml:"user_id" toml:"user_id"`
	ConversationID string `yaml:"conversation_id" toml:"conversation_id"` // optional; highlights one thread
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`   // debug, info, warn, error
	Format string `yaml:"format" toml:"format"` // text or json
}

// HealthConfig holds the health endpoint settings.
type HealthConfig struct {
	Port int    `yaml:"port" toml:"port"` // 0 disables the endpoint
	Path string `yaml:"path" toml:"path"`
}
