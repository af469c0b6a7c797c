package heartbeat

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Default cadence.
const (
	DefaultInterval = 30 * time.Second
	DefaultTimeout  = 5 * time.Second
)

// State is the liveness bookkeeping of one connection.
type State struct {
	LastPingSentAt time.Time // zero if no ping was sent on this connection
	AwaitingPong   bool
}

// Config configures a Monitor.
type Config struct {
	Interval time.Duration   // time between pings
	Timeout  time.Duration   // max wait for a pong after a ping
	Clock    clockwork.Clock // nil = real clock
}

// DefaultConfig returns the 30s/5s cadence on the real clock.
func DefaultConfig() Config {
	return Config{
		Interval: DefaultInterval,
		Timeout:  DefaultTimeout,
	}
}

// Monitor tracks heartbeat state for the connection owner.
// All methods except State must be called from the owning goroutine.
type Monitor struct {
	cfg   Config
	clock clockwork.Clock

	interval clockwork.Timer // armed while running and not awaiting a pong
	deadline clockwork.Timer // armed while awaiting a pong

	mu    sync.RWMutex
	state State
}

// New creates a stopped monitor.
func New(cfg Config) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Monitor{cfg: cfg, clock: clock}
}

// Start arms the ping cadence and resets state. Restarting a running monitor
// cancels its timers first.
func (m *Monitor) Start() {
	m.Stop()
	m.mu.Lock()
	m.state = State{}
	m.mu.Unlock()
	m.interval = m.clock.NewTimer(m.cfg.Interval)
}

// Stop cancels every timer and clears AwaitingPong. Safe to call repeatedly.
func (m *Monitor) Stop() {
	stopTimer(&m.interval)
	stopTimer(&m.deadline)

	m.mu.Lock()
	m.state.AwaitingPong = false
	m.mu.Unlock()
}

// Running reports whether the ping cadence is armed.
func (m *Monitor) Running() bool {
	return m.interval != nil || m.deadline != nil
}

// Tick fires when the next ping is due. Nil when disarmed.
func (m *Monitor) Tick() <-chan time.Time {
	if m.interval == nil {
		return nil
	}
	return m.interval.Chan()
}

// Expired fires when a pong did not arrive in time. Nil when not awaiting one.
func (m *Monitor) Expired() <-chan time.Time {
	if m.deadline == nil {
		return nil
	}
	return m.deadline.Chan()
}

// PingSent records a ping and arms the liveness deadline. The cadence timer is
// re-armed so the next tick lands Interval after this ping.
func (m *Monitor) PingSent(at time.Time) {
	stopTimer(&m.deadline)
	stopTimer(&m.interval)

	m.mu.Lock()
	m.state.LastPingSentAt = at
	m.state.AwaitingPong = true
	m.mu.Unlock()

	m.deadline = m.clock.NewTimer(m.cfg.Timeout)
	m.interval = m.clock.NewTimer(m.cfg.Interval)
}

// SkipTick re-arms the cadence without recording a ping, for ticks that
// arrive while a pong is still outstanding.
func (m *Monitor) SkipTick() {
	stopTimer(&m.interval)
	m.interval = m.clock.NewTimer(m.cfg.Interval)
}

// Pong records a heartbeat reply. Returns false if no pong was awaited,
// in which case nothing changes.
func (m *Monitor) Pong() bool {
	m.mu.Lock()
	awaiting := m.state.AwaitingPong
	m.state.AwaitingPong = false
	m.mu.Unlock()

	if !awaiting {
		return false
	}
	stopTimer(&m.deadline)
	return true
}

// Expire handles a fired deadline: clears AwaitingPong and disarms every
// timer. The owner is expected to force a reconnect.
func (m *Monitor) Expire() {
	m.Stop()
}

// State returns a snapshot. Safe for concurrent use.
func (m *Monitor) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Config returns the effective configuration.
func (m *Monitor) Config() Config {
	return m.cfg
}

func stopTimer(t *clockwork.Timer) {
	if *t == nil {
		return
	}
	(*t).Stop()
	*t = nil
}
