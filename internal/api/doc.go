// Package api is a small client for the messaging backend REST API.
//
// Only the identity and history lookups the realtime client needs are
// covered:
//
//	GET {origin}/users/{id}
//	GET {origin}/messages/conversation/{conversation_id}?user_id=&limit=&offset=
//
// 5xx and 429 responses are retried with jittered exponential backoff.
package api
