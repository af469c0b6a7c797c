package model

import (
	"encoding/json"
	"time"
)

// Direction of a message relative to the connected account.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// MessageStatus is the delivery state reported by the platform.
type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
	StatusFailed    MessageStatus = "failed"
)

// -----------------------------------------------------------------------------
// Identity
// -----------------------------------------------------------------------------

// User is the dashboard owner. Its ID is the subject of the realtime channel.
type User struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Email     *string `json:"email"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// -----------------------------------------------------------------------------
// Messages
// -----------------------------------------------------------------------------

// Message is a single inbound or outbound message in a conversation.
type Message struct {
	ID                 int64         `json:"id"`
	Platform           string        `json:"platform,omitempty"`
	ConversationID     string        `json:"conversation_id,omitempty"`
	MessageID          string        `json:"message_id,omitempty"`
	SenderID           string        `json:"sender_id,omitempty"`
	RecipientID        string        `json:"recipient_id,omitempty"`
	Direction          Direction     `json:"direction,omitempty"`
	MessageType        string        `json:"message_type,omitempty"` // text, image, video, audio, file, sticker, location
	Content            *string       `json:"content,omitempty"`
	AttachmentURL      *string       `json:"attachment_url,omitempty"`
	AttachmentType     *string       `json:"attachment_type,omitempty"`
	AttachmentFilename *string       `json:"attachment_filename,omitempty"`
	ThumbnailURL       *string       `json:"thumbnail_url,omitempty"`
	Status             MessageStatus `json:"status,omitempty"`
	CreatedAt          string        `json:"created_at,omitempty"`
	UpdatedAt          string        `json:"updated_at,omitempty"`
}

// CreatedTime parses CreatedAt. Returns the zero time if absent or malformed.
func (m Message) CreatedTime() time.Time {
	t, err := time.Parse(time.RFC3339Nano, m.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Text returns the message content or an empty string.
func (m Message) Text() string {
	if m.Content == nil {
		return ""
	}
	return *m.Content
}

// NewMessage is the data of a "new_message" realtime event.
type NewMessage struct {
	ConversationID string  `json:"conversation_id"`
	Message        Message `json:"message"`

	// Raw keeps the original message object so callers can read fields
	// the backend adds later.
	Raw json.RawMessage `json:"-"`
}
