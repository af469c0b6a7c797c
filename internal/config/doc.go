// Package config loads the inboxlive configuration.
//
// Files are YAML (or TOML when the extension is .toml). ${VAR} references are
// expanded from the environment before parsing, so secrets can stay out of
// the file:
//
//	backend:
//	  origin: https://dash.example.com/api
//	  api_key: ${INBOX_API_KEY}
//	realtime:
//	  heartbeat_interval: 30s
//	  pong_timeout: 5s
//	session:
//	  user_id: "42"
//
// Use LoadAndValidate for the usual load, defaults, validate sequence.
package config
