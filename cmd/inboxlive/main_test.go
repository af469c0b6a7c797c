package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/inbox-dashboard/internal/backendsim"
	"github.com/rickgao/inbox-dashboard/internal/config"
	"github.com/rickgao/inbox-dashboard/internal/connection"
	"github.com/rickgao/inbox-dashboard/internal/model"
	"github.com/rickgao/inbox-dashboard/internal/router"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestLoadConfig_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session:\n  user_id: \"1\"\n"), 0644))

	cfg, err := loadConfig(path, "42", "c1", "https://dash.example.com/api")
	require.NoError(t, err)
	assert.Equal(t, "42", cfg.Session.UserID)
	assert.Equal(t, "c1", cfg.Session.ConversationID)
	assert.Equal(t, "https://dash.example.com/api", cfg.Backend.Origin)
}

func TestLoadConfig_RequiresUser(t *testing.T) {
	_, err := loadConfig("", "", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user id is required")
}

func TestManagerConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Backend.APIKey = "k"
	cfg.Realtime.HeartbeatInterval = 20 * time.Second

	mc := managerConfig(cfg)
	assert.Equal(t, 20*time.Second, mc.HeartbeatInterval)
	assert.Equal(t, config.DefaultPongTimeout, mc.PongTimeout)
	assert.Equal(t, "k", mc.Header.Get("X-API-Key"))
	assert.Equal(t, config.DefaultWSPathTemplate, mc.PathTemplate)
}

func TestPrinter_Event(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, "c1")

	rt := router.New(router.DefaultConfig(), nil)
	watched := rt.Publish("new_message", []byte(`{"conversation_id":"c1","message":{"sender_id":"alice","content":"hi","direction":"incoming"}}`))
	other := rt.Publish("new_message", []byte(`{"conversation_id":"c2","message":{"sender_id":"me","message_type":"image","direction":"outgoing"}}`))
	unknown := rt.Publish("typing", []byte(`{}`))

	p.Event(watched)
	p.Event(other)
	p.Event(unknown)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "c1 <- alice: hi")
	assert.Contains(t, lines[1], "c2 -> me: [image]")
	assert.Contains(t, lines[2], "typing event (2 bytes)")
}

func TestPrinter_Run(t *testing.T) {
	var buf syncBuffer
	p := newPrinter(&buf, "")

	rt := router.New(router.DefaultConfig(), nil)
	sub := rt.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx, sub)
		close(done)
	}()

	rt.SetConnected(true)
	require.Eventually(t, func() bool { return strings.Contains(buf.String(), "live") }, time.Second, 5*time.Millisecond)

	rt.Publish("new_message", []byte(`{"conversation_id":"c9","message":{"sender_id":"bob","content":"yo"}}`))
	require.Eventually(t, func() bool { return strings.Contains(buf.String(), "c9 <- bob: yo") }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestPrinter_History(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, "c1")
	content := "earlier"

	p.History([]model.Message{{ConversationID: "c1", SenderID: "alice", Content: &content, CreatedAt: "2024-01-02T03:04:05Z"}})

	out := buf.String()
	assert.Contains(t, out, "-- last 1 messages in c1 --")
	assert.Contains(t, out, "c1 <- alice: earlier")
	assert.Contains(t, out, "-- live --")
}

func TestHealthHandler(t *testing.T) {
	sim := backendsim.New(nil)
	ts := httptest.NewServer(sim)
	defer ts.Close()

	cfg := connection.DefaultManagerConfig()
	cfg.Origin = ts.URL + "/api"
	rt := router.New(router.DefaultConfig(), nil)
	mgr := connection.NewManager(cfg, rt, nil)

	h := newHealthHandler("/health", mgr, rt)

	get := func() (int, healthResponse) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		var body healthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return rec.Code, body
	}

	code, body := get()
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "idle", body.Realtime.State)

	require.NoError(t, mgr.Start(context.Background(), "42"))
	defer mgr.Stop(context.Background())
	require.Eventually(t, mgr.Connected, 3*time.Second, 5*time.Millisecond)

	code, body = get()
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "open", body.Realtime.State)
	assert.Equal(t, int64(1), body.Realtime.Opens)
	assert.Nil(t, body.Heartbeat.LastPingSentAt)
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
