package router

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/inbox-dashboard/internal/frame"
)

// Router classifies inbound frames and fans events out to subscriptions.
// Route is called by the single connection owner; every other method is safe
// for concurrent use.
type Router struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	latest    atomic.Pointer[Event]
	connected atomic.Bool
	seq       atomic.Uint64

	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64

	received    atomic.Int64
	delivered   atomic.Int64
	pongs       atomic.Int64
	parseErrors atomic.Int64
	dropped     atomic.Int64
}

// New creates an Event Router.
func New(cfg Config, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SubscriberBuffer <= 0 {
		cfg.SubscriberBuffer = DefaultConfig().SubscriberBuffer
	}

	return &Router{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		subs:   make(map[uint64]*Subscription),
	}
}

// Route decodes and classifies one inbound payload.
func (r *Router) Route(data []byte) Result {
	r.received.Add(1)

	f, err := frame.Decode(data)
	if err != nil {
		r.parseErrors.Add(1)
		r.logger.Warn("failed to decode frame",
			"error", err,
			"bytes", len(data),
			"payload", truncate(data, 256),
		)
		return Dropped
	}

	if f.Kind == frame.KindPong {
		r.pongs.Add(1)
		return Pong
	}

	r.Publish(f.Type, f.Data)
	return Delivered
}

// Publish stores a new latest event and fans it out.
func (r *Router) Publish(typ string, data []byte) *Event {
	ev := &Event{
		Token:      uuid.New(),
		Seq:        r.seq.Add(1),
		Type:       typ,
		Data:       data,
		ReceivedAt: r.now(),
	}
	r.latest.Store(ev)
	r.delivered.Add(1)

	r.mu.RLock()
	for _, s := range r.subs {
		if s.offer(ev) {
			r.dropped.Add(1)
		}
	}
	r.mu.RUnlock()

	r.logger.Debug("event delivered",
		"type", ev.Type,
		"seq", ev.Seq,
	)
	return ev
}

// Latest returns the most recent event, or nil if none was delivered yet.
func (r *Router) Latest() *Event {
	return r.latest.Load()
}

// SetConnected updates the connectivity signal and notifies subscriptions on
// change.
func (r *Router) SetConnected(connected bool) {
	if r.connected.Swap(connected) == connected {
		return
	}

	r.mu.RLock()
	for _, s := range r.subs {
		s.setStatus(connected)
	}
	r.mu.RUnlock()
}

// Connected returns the connectivity signal.
func (r *Router) Connected() bool {
	return r.connected.Load()
}

// Subscribe registers a new subscription. Its Status channel immediately holds
// the current connectivity.
func (r *Router) Subscribe() *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	s := newSubscription(r, r.nextID, r.cfg.SubscriberBuffer)
	s.setStatus(r.connected.Load())
	r.subs[s.id] = s
	return s
}

func (r *Router) unsubscribe(s *Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[s.id]; !ok {
		return
	}
	delete(r.subs, s.id)
	s.close()
}

// Close closes every subscription.
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.subs {
		delete(r.subs, id)
		s.close()
	}
}

// Stats returns current statistics.
func (r *Router) Stats() Stats {
	r.mu.RLock()
	n := len(r.subs)
	r.mu.RUnlock()

	return Stats{
		Received:      r.received.Load(),
		Delivered:     r.delivered.Load(),
		Pongs:         r.pongs.Load(),
		ParseErrors:   r.parseErrors.Load(),
		Dropped:       r.dropped.Load(),
		Subscriptions: n,
	}
}

func truncate(data []byte, n int) string {
	if len(data) <= n {
		return string(data)
	}
	return string(data[:n]) + "..."
}
