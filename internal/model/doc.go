// Package model defines the payload types exchanged with the messaging backend.
//
// The types mirror the JSON objects the backend emits on both the REST API and the
// realtime channel. Field names follow the backend's snake_case wire names.
//
// Conventions:
//   - IDs: int64 for database rows, string for platform-assigned identifiers
//   - Timestamps: RFC 3339 strings as sent by the backend, parsed on demand
package model
