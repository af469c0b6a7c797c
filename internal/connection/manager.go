package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/rickgao/inbox-dashboard/internal/backoff"
	"github.com/rickgao/inbox-dashboard/internal/frame"
	"github.com/rickgao/inbox-dashboard/internal/heartbeat"
	"github.com/rickgao/inbox-dashboard/internal/router"
)

// Manager owns the realtime connection of one subject.
type Manager struct {
	cfg     ManagerConfig
	router  *router.Router
	logger  *slog.Logger
	policy  backoff.Policy
	clock   clockwork.Clock
	monitor *heartbeat.Monitor

	// Lifecycle, held across Start and Stop so at most one loop exists.
	lifeMu  sync.Mutex
	subject string
	loopCtx context.Context
	cancel  context.CancelFunc
	done    chan struct{}

	state atomic.Int32

	// Stats
	opens        atomic.Int64
	failures     atomic.Int64
	forcedCloses atomic.Int64
	decodeErrors atomic.Int64
	attempt      atomic.Int64
}

// NewManager creates a new Connection Manager.
func NewManager(cfg ManagerConfig, rt *router.Router, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if rt == nil {
		rt = router.New(router.DefaultConfig(), logger)
	}

	defaults := DefaultManagerConfig()
	if cfg.PathTemplate == "" {
		cfg.PathTemplate = defaults.PathTemplate
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = defaults.HeartbeatInterval
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = defaults.PongTimeout
	}
	if cfg.ReconnectBaseWait <= 0 {
		cfg.ReconnectBaseWait = defaults.ReconnectBaseWait
	}
	if cfg.ReconnectMaxWait <= 0 {
		cfg.ReconnectMaxWait = defaults.ReconnectMaxWait
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = defaults.HandshakeTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if cfg.MessageBufferSize <= 0 {
		cfg.MessageBufferSize = defaults.MessageBufferSize
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.NewClient == nil {
		cfg.NewClient = NewClient
	}

	return &Manager{
		cfg:    cfg,
		router: rt,
		logger: logger,
		policy: backoff.Policy{Base: cfg.ReconnectBaseWait, Max: cfg.ReconnectMaxWait},
		clock:  cfg.Clock,
		monitor: heartbeat.New(heartbeat.Config{
			Interval: cfg.HeartbeatInterval,
			Timeout:  cfg.PongTimeout,
			Clock:    cfg.Clock,
		}),
	}
}

// Start connects as subjectID. An empty subject is a no-op. Starting with the
// subject that is already running is a no-op; a different subject replaces the
// running connection. The connection lives until Stop or until ctx is done.
//
// Connection failures are never returned: they turn into reconnect attempts.
func (m *Manager) Start(ctx context.Context, subjectID string) error {
	if subjectID == "" {
		return nil
	}

	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()

	if m.runningLocked() {
		if m.subject == subjectID {
			return nil
		}
		m.logger.Info("subject changed, replacing connection",
			"old_subject", m.subject,
			"new_subject", subjectID,
		)
		if err := m.stopLocked(ctx); err != nil {
			return fmt.Errorf("stop previous connection: %w", err)
		}
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l := &loop{
		m:       m,
		subject: subjectID,
		logger:  m.logger.With("subject", subjectID),
		dialed:  make(chan dialResult, 1),
	}

	m.subject = subjectID
	m.loopCtx = loopCtx
	m.cancel = cancel
	m.done = done

	go func() {
		defer close(done)
		l.run(loopCtx)
	}()

	return nil
}

// Stop tears the connection down: timers cancelled, socket closed, state Idle.
// Safe from any state and idempotent. Once Stop returns no reconnect attempt
// is pending. ctx bounds the wait for the loop to exit.
func (m *Manager) Stop(ctx context.Context) error {
	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()
	return m.stopLocked(ctx)
}

func (m *Manager) stopLocked(ctx context.Context) error {
	if m.cancel == nil {
		return nil
	}

	m.cancel()

	select {
	case <-m.done:
	case <-ctx.Done():
		m.logger.Warn("stop timed out waiting for connection loop")
		return ctx.Err()
	}

	m.clearLocked()
	return nil
}

func (m *Manager) runningLocked() bool {
	if m.done == nil {
		return false
	}
	if m.loopCtx.Err() == nil {
		return true
	}
	// The Start context was cancelled; the loop is already on its way out.
	<-m.done
	m.cancel()
	m.clearLocked()
	return false
}

func (m *Manager) clearLocked() {
	m.loopCtx = nil
	m.cancel = nil
	m.done = nil
	m.subject = ""
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	return State(m.state.Load())
}

// Connected is true only while the state is Open.
func (m *Manager) Connected() bool {
	return m.State() == Open
}

// Heartbeat returns the heartbeat bookkeeping of the current connection.
func (m *Manager) Heartbeat() heartbeat.State {
	return m.monitor.State()
}

// Router returns the router fed by this manager.
func (m *Manager) Router() *router.Router {
	return m.router
}

// Stats returns current statistics.
func (m *Manager) Stats() ManagerStats {
	s := m.State()
	return ManagerStats{
		State:        s.String(),
		Connected:    s == Open,
		Opens:        m.opens.Load(),
		Failures:     m.failures.Load(),
		ForcedCloses: m.forcedCloses.Load(),
		DecodeErrors: m.decodeErrors.Load(),
		Attempt:      m.attempt.Load(),
	}
}

// dialResult is posted by the dial goroutine back to the loop.
type dialResult struct {
	client  Client
	session string
	err     error
}

// loop is the event loop of one Start..Stop span. Every field is owned by the
// loop goroutine.
type loop struct {
	m       *Manager
	subject string
	logger  *slog.Logger

	retry      RetryState
	retryTimer clockwork.Timer

	client  Client
	session string
	dialing bool
	dialed  chan dialResult
}

func (l *loop) run(ctx context.Context) {
	defer l.shutdown()

	l.connect(ctx)

	for {
		var (
			msgs <-chan TimestampedMessage
			errs <-chan error
		)
		if l.client != nil {
			msgs = l.client.Messages()
			errs = l.client.Errors()
		}

		select {
		case <-ctx.Done():
			return

		case res := <-l.dialed:
			l.dialing = false
			l.handleDial(res)

		case msg := <-msgs:
			l.handleMessage(msg)

		case err := <-errs:
			// Frames read before the failure are still delivered in order.
			l.drain()
			l.logger.Warn("connection error", "session", l.session, "error", err)
			l.handleLost(err)

		case <-l.m.monitor.Tick():
			l.handleTick()

		case <-l.m.monitor.Expired():
			l.handleLiveness()

		case <-l.retryC():
			l.retryTimer = nil
			l.connect(ctx)
		}
	}
}

// connect starts one connection attempt. Any earlier socket is closed first.
func (l *loop) connect(ctx context.Context) {
	l.closeClient()
	l.transition(evDial)

	url, err := EndpointURL(l.m.cfg.Origin, l.m.cfg.PathTemplate, l.subject)
	if err != nil {
		l.logger.Warn("cannot build realtime endpoint", "error", err)
		l.handleLost(err)
		return
	}

	session := uuid.NewString()
	client := l.m.cfg.NewClient(ClientConfig{
		URL:              url,
		Header:           l.m.cfg.Header,
		HandshakeTimeout: l.m.cfg.HandshakeTimeout,
		WriteTimeout:     l.m.cfg.WriteTimeout,
		BufferSize:       l.m.cfg.MessageBufferSize,
		ReadLimit:        l.m.cfg.ReadLimit,
	}, l.logger.With("session", session))

	l.logger.Info("connecting", "url", url, "session", session, "attempt", l.retry.Attempt)

	l.dialing = true
	go func() {
		err := client.Connect(ctx)
		l.dialed <- dialResult{client: client, session: session, err: err}
	}()
}

func (l *loop) handleDial(res dialResult) {
	if res.err != nil {
		res.client.Close()
		l.logger.Warn("connection attempt failed", "session", res.session, "error", res.err)
		l.handleLost(res.err)
		return
	}

	l.client = res.client
	l.session = res.session
	l.transition(evOpened)
	l.retry.Reset()
	l.m.attempt.Store(0)
	l.m.opens.Add(1)
	l.m.monitor.Start()

	l.logger.Info("realtime connected", "session", res.session)
}

func (l *loop) handleMessage(msg TimestampedMessage) {
	switch l.m.router.Route(msg.Data) {
	case router.Pong:
		sentAt := l.m.monitor.State().LastPingSentAt
		if l.m.monitor.Pong() {
			l.logger.Debug("pong received", "rtt", msg.ReceivedAt.Sub(sentAt))
		} else {
			l.logger.Debug("ignoring unsolicited pong")
		}
	case router.Dropped:
		l.m.decodeErrors.Add(1)
	}
}

func (l *loop) handleTick() {
	if l.client == nil {
		return
	}
	if l.m.monitor.State().AwaitingPong {
		l.m.monitor.SkipTick()
		return
	}

	if err := l.client.Send(frame.Ping()); err != nil {
		l.logger.Warn("failed to send ping", "session", l.session, "error", err)
		l.handleLost(fmt.Errorf("send ping: %w", err))
		return
	}
	l.m.monitor.PingSent(l.m.clock.Now())
	l.logger.Debug("ping sent", "session", l.session)
}

func (l *loop) handleLiveness() {
	last := l.m.monitor.State().LastPingSentAt
	l.m.monitor.Expire()
	l.m.forcedCloses.Add(1)

	l.logger.Warn("pong not received, connection appears dead",
		"session", l.session,
		"last_ping", last,
		"timeout", l.m.cfg.PongTimeout,
	)

	l.transition(evClose)
	l.handleLost(ErrLivenessTimeout)
}

// handleLost runs the reconnect path: heartbeat stopped, socket released, one
// reconnect timer armed.
func (l *loop) handleLost(cause error) {
	l.m.monitor.Stop()
	l.closeClient()
	l.m.failures.Add(1)
	l.transition(evLost)

	delay := l.retry.Next(l.m.policy)
	l.m.attempt.Store(int64(l.retry.Attempt))

	stopTimer(&l.retryTimer)
	l.retryTimer = l.m.clock.NewTimer(delay)

	l.logger.Info("reconnecting",
		"delay", delay,
		"attempt", l.retry.Attempt,
		"cause", cause,
	)
	if l.m.cfg.OnReconnect != nil {
		l.m.cfg.OnReconnect(l.retry.Attempt, delay, cause)
	}
}

func (l *loop) drain() {
	if l.client == nil {
		return
	}
	for {
		select {
		case msg := <-l.client.Messages():
			l.handleMessage(msg)
		default:
			return
		}
	}
}

func (l *loop) shutdown() {
	stopTimer(&l.retryTimer)
	l.m.monitor.Stop()

	// The dial goroutine sees the cancelled context and returns promptly.
	if l.dialing {
		res := <-l.dialed
		l.dialing = false
		res.client.Close()
	}

	if l.client != nil {
		l.transition(evClose)
	}
	l.closeClient()
	l.transition(evHalt)

	l.logger.Info("realtime connection stopped")
}

func (l *loop) closeClient() {
	if l.client == nil {
		return
	}
	if err := l.client.Close(); err != nil && !errors.Is(err, ErrAlreadyClosed) {
		l.logger.Debug("close error", "session", l.session, "error", err)
	}
	l.client = nil
	l.session = ""
}

func (l *loop) retryC() <-chan time.Time {
	if l.retryTimer == nil {
		return nil
	}
	return l.retryTimer.Chan()
}

func (l *loop) transition(e event) {
	from := l.m.State()
	to, ok := next(from, e)
	if !ok {
		l.logger.Error("invalid state transition", "from", from, "event", e)
		return
	}
	if to == from {
		return
	}

	l.m.state.Store(int32(to))
	l.m.router.SetConnected(to == Open)

	l.logger.Debug("state changed", "from", from, "to", to)
	if l.m.cfg.OnStateChange != nil {
		l.m.cfg.OnStateChange(from, to)
	}
}

func stopTimer(t *clockwork.Timer) {
	if *t == nil {
		return
	}
	(*t).Stop()
	*t = nil
}
