// Package backoff implements the reconnect policy: capped exponential backoff
// keyed by the number of consecutive failures.
package backoff

import "time"

// Default reconnect bounds.
const (
	DefaultBase = 1 * time.Second
	DefaultMax  = 30 * time.Second
)

// Policy computes reconnect delays. The zero value uses the defaults.
type Policy struct {
	Base time.Duration // delay for attempt 0
	Max  time.Duration // cap on any delay
}

// Default returns the 1s/30s policy.
func Default() Policy {
	return Policy{Base: DefaultBase, Max: DefaultMax}
}

// Delay returns min(Base * 2^attempt, Max). Negative attempts count as 0.
// There is no cap on attempt itself; only the result is bounded.
func (p Policy) Delay(attempt int) time.Duration {
	base := p.Base
	if base <= 0 {
		base = DefaultBase
	}
	max := p.Max
	if max <= 0 {
		max = DefaultMax
	}
	if base >= max {
		return max
	}
	if attempt < 0 {
		attempt = 0
	}

	wait := base
	for i := 0; i < attempt; i++ {
		// Doubling past max/2 would exceed max (or overflow).
		if wait > max/2 {
			return max
		}
		wait *= 2
	}
	return wait
}
