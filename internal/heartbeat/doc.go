// Package heartbeat implements the Heartbeat Monitor.
//
// The monitor detects half-open connections: sockets that are technically open
// but no longer answer. While armed it fires a tick every Interval; the owner sends
// a ping and reports it with PingSent, which arms a liveness deadline of Timeout.
// A pong before the deadline (Pong) clears it; otherwise Expired fires and the
// owner must force a reconnect.
//
// The monitor does not run goroutines. It exposes timer channels that its single
// owner selects on, and those channels are nil whenever the corresponding timer is
// disarmed, so a cancelled timer can never be observed.
package heartbeat
