package frame

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/rickgao/inbox-dashboard/internal/model"
)

// Errors
var (
	ErrEmpty       = errors.New("frame: empty payload")
	ErrMalformed   = errors.New("frame: malformed payload")
	ErrMissingType = errors.New("frame: missing type")
)

// Kind discriminates decoded frames.
type Kind uint8

const (
	KindPing  Kind = iota + 1 // outbound liveness probe
	KindPong                  // inbound liveness reply
	KindEvent                 // inbound structured event
)

func (k Kind) String() string {
	switch k {
	case KindPing:
		return "ping"
	case KindPong:
		return "pong"
	case KindEvent:
		return "event"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Event sub-types the dashboard interprets.
const (
	TypePong       = "pong"
	TypeNewMessage = "new_message"
)

// pingToken is sent verbatim as a text message.
var pingToken = []byte("ping")

// Frame is one decoded message unit.
type Frame struct {
	Kind Kind
	Type string          // "type" field; "pong" for KindPong
	Data json.RawMessage // "data" field, nil if absent
	Raw  []byte          // original bytes
}

// envelope is the minimal shape every inbound frame must have.
type envelope struct {
	Type *string         `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Ping returns the outbound heartbeat payload.
func Ping() []byte {
	out := make([]byte, len(pingToken))
	copy(out, pingToken)
	return out
}

// IsPing reports whether data is the heartbeat probe token.
func IsPing(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), pingToken)
}

// Decode parses an inbound frame.
func Decode(data []byte) (Frame, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Frame{}, ErrEmpty
	}
	if !utf8.Valid(trimmed) {
		return Frame{}, fmt.Errorf("%w: invalid utf-8", ErrMalformed)
	}
	if trimmed[0] != '{' {
		return Frame{}, fmt.Errorf("%w: not a json object", ErrMalformed)
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == nil || *env.Type == "" {
		return Frame{}, ErrMissingType
	}

	f := Frame{
		Kind: KindEvent,
		Type: *env.Type,
		Data: env.Data,
		Raw:  data,
	}
	if f.Type == TypePong {
		f.Kind = KindPong
	}
	return f, nil
}

// DecodeNewMessage parses the data of a "new_message" event.
func DecodeNewMessage(data json.RawMessage) (model.NewMessage, error) {
	var raw struct {
		ConversationID string          `json:"conversation_id"`
		Message        json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.NewMessage{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	nm := model.NewMessage{
		ConversationID: raw.ConversationID,
		Raw:            raw.Message,
	}
	if len(raw.Message) > 0 && !bytes.Equal(raw.Message, []byte("null")) {
		if err := json.Unmarshal(raw.Message, &nm.Message); err != nil {
			return model.NewMessage{}, fmt.Errorf("%w: message: %v", ErrMalformed, err)
		}
	}
	return nm, nil
}
