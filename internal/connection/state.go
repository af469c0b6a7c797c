package connection

import "fmt"

// State is the lifecycle state of a managed connection.
type State int32

const (
	Idle State = iota
	Connecting
	Open
	Closing
	Reconnecting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closing:
		return "closing"
	case Reconnecting:
		return "reconnecting"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// event drives the state machine.
type event uint8

const (
	evDial   event = iota + 1 // a connection attempt starts
	evOpened                  // handshake completed
	evClose                   // we are closing a live socket
	evLost                    // socket gone or attempt failed; reconnect
	evHalt                    // manual stop
)

func (e event) String() string {
	switch e {
	case evDial:
		return "dial"
	case evOpened:
		return "opened"
	case evClose:
		return "close"
	case evLost:
		return "lost"
	case evHalt:
		return "halt"
	default:
		return fmt.Sprintf("event(%d)", uint8(e))
	}
}

// next is the transition function. ok is false for transitions the manager
// must never take.
func next(s State, e event) (State, bool) {
	switch e {
	case evDial:
		if s == Idle || s == Reconnecting {
			return Connecting, true
		}
	case evOpened:
		if s == Connecting {
			return Open, true
		}
	case evClose:
		if s == Open || s == Connecting {
			return Closing, true
		}
	case evLost:
		if s == Connecting || s == Open || s == Closing {
			return Reconnecting, true
		}
	case evHalt:
		return Idle, true
	}
	return s, false
}
