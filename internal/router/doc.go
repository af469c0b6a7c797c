// Package router implements the Event Router.
//
// The router classifies decoded frames coming off the realtime channel:
//   - malformed payloads are logged, counted and dropped
//   - pong frames are reported back to the caller for the heartbeat monitor and
//     never reach subscribers
//   - every other frame becomes a fresh *Event, stored as the latest event and
//     fanned out to all subscriptions
//
// Fan-out never blocks the receive path. Each subscription has a bounded queue;
// when it is full the oldest queued event is discarded. The router performs no
// per-subscriber filtering: a view interested in one conversation checks the
// event itself, typically with ForConversation.
package router
