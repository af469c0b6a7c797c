// Package frame implements the Frame Codec for the realtime channel.
//
// Wire format:
//   - Outbound: the bare text token "ping" (not JSON)
//   - Inbound: UTF-8 JSON objects with at least a "type" field
//
// A "pong" object is the heartbeat reply. Every other type is an event and is
// passed through with its "data" payload untouched.
package frame
