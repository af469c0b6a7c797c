// Package backendsim is an in-process stand-in for the messaging backend.
//
// It upgrades /api/ws/{subject} to a WebSocket, answers the literal "ping"
// text frame with {"type":"pong"} and lets the caller push events to every
// connection of a subject. Failure modes are switchable at runtime: a silent
// mode that swallows pongs, dropping every connection, and rejecting the next
// N upgrades with 503. It also serves GET /api/users/{id} for identity lookups.
//
// Used by the connection tests and by cmd/backendsim for local demos.
package backendsim
