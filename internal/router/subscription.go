package router

import "sync"

// Subscription is a consumer's handle on the router. The router holds it only
// for fan-out; the consumer decides when it ends by calling Close.
type Subscription struct {
	id     uint64
	router *Router

	events chan *Event
	status chan bool

	// mu serializes offers with the drop-oldest retry.
	mu     sync.Mutex
	closed bool
}

func newSubscription(r *Router, id uint64, buffer int) *Subscription {
	return &Subscription{
		id:     id,
		router: r,
		events: make(chan *Event, buffer),
		status: make(chan bool, 1),
	}
}

// Events delivers every published event in order. Closed by Close.
func (s *Subscription) Events() <-chan *Event {
	return s.events
}

// Status holds the latest connectivity value; intermediate flips may be
// coalesced. Closed by Close.
func (s *Subscription) Status() <-chan bool {
	return s.status
}

// Close unregisters the subscription and closes its channels. Idempotent.
func (s *Subscription) Close() {
	s.router.unsubscribe(s)
}

// offer enqueues ev without blocking. Returns true if an older event had to be
// discarded to make room.
func (s *Subscription) offer(ev *Event) (dropped bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	for {
		select {
		case s.events <- ev:
			return dropped
		default:
		}
		select {
		case <-s.events:
			dropped = true
		default:
		}
	}
}

func (s *Subscription) setStatus(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	select {
	case <-s.status:
	default:
	}
	s.status <- connected
}

func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
	close(s.status)
}
