package backendsim

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/inbox-dashboard/internal/model"
)

const writeWait = 5 * time.Second

// Server simulates the backend realtime and identity endpoints.
type Server struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader
	mux      *http.ServeMux

	mu    sync.Mutex
	peers   map[string]map[*peer]struct{}
	users   map[string]model.User
	history map[string][]model.Message // by conversation id, oldest first

	silent   atomic.Bool
	reject   atomic.Int32
	pings    atomic.Int64
	accepted atomic.Int64
	rejected atomic.Int64
}

// peer is one upgraded connection. Writes are serialized by mu.
type peer struct {
	subject string
	conn    *websocket.Conn
	mu      sync.Mutex
}

func (p *peer) write(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return p.conn.WriteMessage(websocket.TextMessage, data)
}

// Stats is a snapshot of server counters.
type Stats struct {
	Accepted    int64 `json:"accepted"`
	Rejected    int64 `json:"rejected"`
	Pings       int64 `json:"pings"`
	Connections int   `json:"connections"`
	Silent      bool  `json:"silent"`
}

// New creates a server with no users and no connections.
func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		peers:   make(map[string]map[*peer]struct{}),
		users:   make(map[string]model.User),
		history: make(map[string][]model.Message),
	}

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("GET /api/ws/{subject}", s.handleWS)
	s.mux.HandleFunc("GET /api/users/{id}", s.handleUser)
	s.mux.HandleFunc("GET /api/messages/conversation/{id}", s.handleHistory)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// AddUser registers a user for GET /api/users/{id}.
func (s *Server) AddUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[strconv.FormatInt(u.ID, 10)] = u
}

// SetSilent toggles pong replies. A silent server keeps the socket open but
// never answers pings.
func (s *Server) SetSilent(silent bool) {
	s.silent.Store(silent)
}

// RejectNext makes the next n upgrade requests fail with 503.
func (s *Server) RejectNext(n int) {
	s.reject.Store(int32(n))
}

// Publish sends {"type":typ,"data":data} to every connection of subject and
// returns how many connections it reached.
func (s *Server) Publish(subject, typ string, data any) (int, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return 0, fmt.Errorf("marshal data: %w", err)
	}
	frame, err := json.Marshal(struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}{Type: typ, Data: raw})
	if err != nil {
		return 0, fmt.Errorf("marshal frame: %w", err)
	}
	return s.SendRaw(subject, frame), nil
}

// AddMessage stores a message in its conversation history without
// publishing it.
func (s *Server) AddMessage(msg model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[msg.ConversationID] = append(s.history[msg.ConversationID], msg)
}

// PublishNewMessage stores msg in the conversation history and sends a
// new_message event for it.
func (s *Server) PublishNewMessage(subject string, msg model.NewMessage) (int, error) {
	if msg.Message.ConversationID == "" {
		msg.Message.ConversationID = msg.ConversationID
	}
	s.AddMessage(msg.Message)
	return s.Publish(subject, "new_message", msg)
}

// SendRaw writes data verbatim to every connection of subject.
func (s *Server) SendRaw(subject string, data []byte) int {
	sent := 0
	for _, p := range s.snapshot(subject) {
		if err := p.write(data); err != nil {
			s.logger.Debug("write failed", "subject", subject, "error", err)
			continue
		}
		sent++
	}
	return sent
}

// DropAll closes every connection without a close handshake and returns how
// many were closed.
func (s *Server) DropAll() int {
	s.mu.Lock()
	var all []*peer
	for _, set := range s.peers {
		for p := range set {
			all = append(all, p)
		}
	}
	s.mu.Unlock()

	for _, p := range all {
		p.conn.Close()
	}
	return len(all)
}

// Connections returns the number of open connections for subject.
func (s *Server) Connections(subject string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.peers[subject])
}

// Pings returns the number of ping frames received.
func (s *Server) Pings() int64 {
	return s.pings.Load()
}

// Accepted returns the number of successful upgrades.
func (s *Server) Accepted() int64 {
	return s.accepted.Load()
}

// Stats returns current counters.
func (s *Server) Stats() Stats {
	s.mu.Lock()
	conns := 0
	for _, set := range s.peers {
		conns += len(set)
	}
	s.mu.Unlock()

	return Stats{
		Accepted:    s.accepted.Load(),
		Rejected:    s.rejected.Load(),
		Pings:       s.pings.Load(),
		Connections: conns,
		Silent:      s.silent.Load(),
	}
}

func (s *Server) snapshot(subject string) []*peer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*peer, 0, len(s.peers[subject]))
	for p := range s.peers[subject] {
		out = append(out, p)
	}
	return out
}

func (s *Server) add(p *peer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.peers[p.subject]
	if !ok {
		set = make(map[*peer]struct{})
		s.peers[p.subject] = set
	}
	set[p] = struct{}{}
}

func (s *Server) remove(p *peer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.peers[p.subject], p)
	if len(s.peers[p.subject]) == 0 {
		delete(s.peers, p.subject)
	}
}

// takeReject consumes one pending rejection.
func (s *Server) takeReject() bool {
	for {
		n := s.reject.Load()
		if n <= 0 {
			return false
		}
		if s.reject.CompareAndSwap(n, n-1) {
			return true
		}
	}
}
