package backendsim

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"github.com/rickgao/inbox-dashboard/internal/model"
)

var pongFrame = []byte(`{"type":"pong"}`)

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	subject := r.PathValue("subject")
	logger := s.logger.With("subject", subject, "remote", r.RemoteAddr)

	if s.takeReject() {
		s.rejected.Add(1)
		logger.Info("rejecting upgrade")
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("upgrade failed", "error", err)
		return
	}

	p := &peer{subject: subject, conn: conn}
	s.add(p)
	s.accepted.Add(1)
	logger.Info("client connected")

	defer func() {
		s.remove(p)
		conn.Close()
		logger.Info("client disconnected")
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("read error", "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		if string(data) == "ping" {
			s.pings.Add(1)
			if s.silent.Load() {
				continue
			}
			if err := p.write(pongFrame); err != nil {
				logger.Debug("pong write failed", "error", err)
				return
			}
			continue
		}

		logger.Debug("ignoring client frame", "bytes", len(data))
	}
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	u, ok := s.users[id]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

const defaultHistoryLimit = 50

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	limit, err := queryInt(r, "limit", defaultHistoryLimit)
	if err != nil || limit < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid limit"})
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid offset"})
		return
	}

	s.mu.Lock()
	all := s.history[id]
	start := min(offset, len(all))
	end := min(start+limit, len(all))
	page := append([]model.Message{}, all[start:end]...)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, page)
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
