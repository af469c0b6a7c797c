package backendsim

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/inbox-dashboard/internal/model"
)

// ControlHandler exposes the failure switches over HTTP for manual testing:
//
//	POST /control/silent?on=true|false
//	POST /control/drop
//	POST /control/reject?n=3
//	POST /control/publish?subject=42&conversation=c1&sender=alice&text=hi
//	GET  /control/stats
func (s *Server) ControlHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /control/silent", func(w http.ResponseWriter, r *http.Request) {
		on, err := strconv.ParseBool(r.URL.Query().Get("on"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "on must be a boolean"})
			return
		}
		s.SetSilent(on)
		s.logger.Info("silent mode changed", "silent", on)
		writeJSON(w, http.StatusOK, s.Stats())
	})

	mux.HandleFunc("POST /control/drop", func(w http.ResponseWriter, r *http.Request) {
		n := s.DropAll()
		s.logger.Info("dropped connections", "count", n)
		writeJSON(w, http.StatusOK, map[string]int{"dropped": n})
	})

	mux.HandleFunc("POST /control/reject", func(w http.ResponseWriter, r *http.Request) {
		n, err := strconv.Atoi(r.URL.Query().Get("n"))
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "n must be a non-negative integer"})
			return
		}
		s.RejectNext(n)
		writeJSON(w, http.StatusOK, map[string]int{"reject_next": n})
	})

	mux.HandleFunc("POST /control/publish", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		subject, conversation := q.Get("subject"), q.Get("conversation")
		if subject == "" || conversation == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "subject and conversation are required"})
			return
		}

		n, err := s.PublishNewMessage(subject, DemoMessage(conversation, q.Get("sender"), q.Get("text")))
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"delivered": n})
	})

	mux.HandleFunc("GET /control/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Stats())
	})

	return mux
}

// DemoMessage builds an incoming text message as the backend would store it.
func DemoMessage(conversationID, sender, text string) model.NewMessage {
	if sender == "" {
		sender = "guest"
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	content := text
	return model.NewMessage{
		ConversationID: conversationID,
		Message: model.Message{
			Platform:       "instagram",
			ConversationID: conversationID,
			MessageID:      "m_" + uuid.NewString(),
			SenderID:       sender,
			Direction:      model.DirectionIncoming,
			MessageType:    "text",
			Content:        &content,
			Status:         model.StatusDelivered,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
	}
}
