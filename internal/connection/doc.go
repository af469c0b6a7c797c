// Package connection implements the Connection Manager component.
//
// The Connection Manager:
//   - Maintains one WebSocket connection per subject (the dashboard user id)
//   - Sends application-level "ping" frames and forces a reconnect when the
//     backend stops answering with "pong"
//   - Handles reconnection with capped exponential backoff, retrying forever
//   - Routes incoming frames to the Event Router
//
// All state transitions, timer expiries and inbound frames are handled by a
// single event loop goroutine per Manager; it is the only writer to the socket.
package connection
