package connection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		name     string
		origin   string
		template string
		subject  string
		want     string
	}{
		{"https origin", "https://dash.example.com/api", "", "42", "wss://dash.example.com/api/ws/42"},
		{"http origin with port", "http://localhost:8000/api", "", "7", "ws://localhost:8000/api/ws/7"},
		{"ws origin kept", "ws://localhost:8000", "", "7", "ws://localhost:8000/api/ws/7"},
		{"custom template", "https://h.example.com", "/realtime/{subject}/events", "9", "wss://h.example.com/realtime/9/events"},
		{"template without slash", "https://h.example.com", "ws/{subject}", "9", "wss://h.example.com/ws/9"},
		{"subject escaped", "https://h.example.com", "", "a b/c", "wss://h.example.com/api/ws/a%20b%2Fc"},
		{"query and fragment dropped", "https://u:p@h.example.com/api?x=1#top", "", "1", "wss://h.example.com/api/ws/1"},
		{"uppercase scheme", "HTTPS://h.example.com", "", "1", "wss://h.example.com/api/ws/1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EndpointURL(tt.origin, tt.template, tt.subject)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEndpointURL_Errors(t *testing.T) {
	tests := []struct {
		name     string
		origin   string
		template string
		subject  string
	}{
		{"empty subject", "https://h.example.com", "", ""},
		{"ftp scheme", "ftp://h.example.com", "", "1"},
		{"no scheme", "h.example.com", "", "1"},
		{"no host", "https:///api", "", "1"},
		{"template without placeholder", "https://h.example.com", "/api/ws", "1"},
		{"unparseable", "https://h.example.com/%zz", "", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EndpointURL(tt.origin, tt.template, tt.subject)
			assert.ErrorIs(t, err, ErrInvalidEndpoint)
		})
	}
}
