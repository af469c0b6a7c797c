package router

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Result tells the caller what Route did with a frame.
type Result uint8

const (
	Dropped   Result = iota // malformed, not delivered
	Pong                    // heartbeat reply, caller must notify the monitor
	Delivered               // published to subscribers
)

func (r Result) String() string {
	switch r {
	case Dropped:
		return "dropped"
	case Pong:
		return "pong"
	case Delivered:
		return "delivered"
	default:
		return "unknown"
	}
}

// Event is one delivered occurrence. Every delivery allocates a new Event with a
// new Token, so two identical payloads are still distinct occurrences.
// Events are shared between subscribers and must be treated as read-only.
type Event struct {
	Token      uuid.UUID       // unique per delivery
	Seq        uint64          // delivery order, starting at 1
	Type       string          // frame "type", e.g. "new_message"
	Data       json.RawMessage // frame "data"
	ReceivedAt time.Time
}

// Config holds configuration for the Event Router.
type Config struct {
	SubscriberBuffer int // per-subscription queue length. Default: 64
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		SubscriberBuffer: 64,
	}
}

// Stats contains runtime statistics.
type Stats struct {
	Received      int64 `json:"received"`  // frames passed to Route
	Delivered     int64 `json:"delivered"` // events published
	Pongs         int64 `json:"pongs"`
	ParseErrors   int64 `json:"parse_errors"`
	Dropped       int64 `json:"dropped"` // events discarded from full subscriber queues
	Subscriptions int   `json:"subscriptions"`
}
