package router

import (
	"github.com/rickgao/inbox-dashboard/internal/frame"
	"github.com/rickgao/inbox-dashboard/internal/model"
)

// NewMessage decodes ev as a "new_message" event.
func NewMessage(ev *Event) (model.NewMessage, bool) {
	if ev == nil || ev.Type != frame.TypeNewMessage {
		return model.NewMessage{}, false
	}
	nm, err := frame.DecodeNewMessage(ev.Data)
	if err != nil {
		return model.NewMessage{}, false
	}
	return nm, true
}

// ForConversation returns the new message carried by ev if it belongs to
// conversationID. Subscribers use it to ignore events for other conversations.
func ForConversation(ev *Event, conversationID string) (model.NewMessage, bool) {
	nm, ok := NewMessage(ev)
	if !ok || nm.ConversationID != conversationID {
		return model.NewMessage{}, false
	}
	return nm, true
}
