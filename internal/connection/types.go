package connection

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rickgao/inbox-dashboard/internal/backoff"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrAlreadyClosed   = errors.New("already closed")
	ErrLivenessTimeout = errors.New("pong not received before timeout")
	ErrInvalidEndpoint = errors.New("invalid realtime endpoint")
)

// DefaultPathTemplate is the realtime path relative to the backend host.
const DefaultPathTemplate = "/api/ws/{subject}"

// TimestampedMessage wraps raw message data with receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL              string        // WebSocket URL (e.g., wss://example.com/api/ws/42)
	Header           http.Header   // Extra handshake headers
	HandshakeTimeout time.Duration // Max time for the opening handshake
	WriteTimeout     time.Duration // Write deadline for sends
	BufferSize       int           // Message channel buffer size
	ReadLimit        int64         // Max inbound message size (0 = unlimited)
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
		BufferSize:       256,
		ReadLimit:        1 << 20,
	}
}

// ClientFactory builds the transport for one connection attempt.
type ClientFactory func(cfg ClientConfig, logger *slog.Logger) Client

// ManagerConfig configures the Connection Manager.
type ManagerConfig struct {
	Origin            string        // Backend origin (e.g., https://example.com/api)
	PathTemplate      string        // Realtime path with a {subject} placeholder
	Header            http.Header   // Extra handshake headers
	HeartbeatInterval time.Duration // Time between pings
	PongTimeout       time.Duration // Max wait for a pong after a ping
	ReconnectBaseWait time.Duration // Delay after the first failure
	ReconnectMaxWait  time.Duration // Cap on reconnect delay
	HandshakeTimeout  time.Duration
	WriteTimeout      time.Duration
	MessageBufferSize int // Inbound buffer per connection
	ReadLimit         int64

	Clock     clockwork.Clock // nil = real clock
	NewClient ClientFactory   // nil = gorilla/websocket client

	// Diagnostics hooks. Called from the event loop; must not block.
	OnStateChange func(from, to State)
	OnReconnect   func(attempt int, delay time.Duration, cause error)
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	client := DefaultClientConfig()
	return ManagerConfig{
		PathTemplate:      DefaultPathTemplate,
		HeartbeatInterval: 30 * time.Second,
		PongTimeout:       5 * time.Second,
		ReconnectBaseWait: backoff.DefaultBase,
		ReconnectMaxWait:  backoff.DefaultMax,
		HandshakeTimeout:  client.HandshakeTimeout,
		WriteTimeout:      client.WriteTimeout,
		MessageBufferSize: client.BufferSize,
		ReadLimit:         client.ReadLimit,
	}
}

// ManagerStats provides statistics about the connection manager.
type ManagerStats struct {
	State        string `json:"state"`
	Connected    bool   `json:"connected"`
	Opens        int64  `json:"opens"`
	Failures     int64  `json:"failures"`
	ForcedCloses int64  `json:"forced_closes"`
	DecodeErrors int64  `json:"decode_errors"`
	Attempt      int64  `json:"attempt"`
}

// RetryState counts consecutive failures since the last successful open.
type RetryState struct {
	Attempt int
}

// Next returns the delay for the current attempt and advances the counter.
func (r *RetryState) Next(p backoff.Policy) time.Duration {
	d := p.Delay(r.Attempt)
	r.Attempt++
	return d
}

// Reset is called once a connection is open.
func (r *RetryState) Reset() {
	r.Attempt = 0
}
