package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPing(t *testing.T) {
	p := Ping()
	assert.Equal(t, "ping", string(p))

	// Callers may mutate the returned slice.
	p[0] = 'x'
	assert.Equal(t, "ping", string(Ping()))

	assert.True(t, IsPing([]byte("ping")))
	assert.True(t, IsPing([]byte(" ping\n")))
	assert.False(t, IsPing([]byte(`{"type":"ping"}`)))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind Kind
		wantType string
		wantData string
	}{
		{"pong", `{"type":"pong"}`, KindPong, "pong", ""},
		{"pong with whitespace", "  {\"type\": \"pong\"}\n", KindPong, "pong", ""},
		{
			"new message",
			`{"type":"new_message","data":{"conversation_id":"c1","message":{"id":5}}}`,
			KindEvent, "new_message", `{"conversation_id":"c1","message":{"id":5}}`,
		},
		{"unknown type passes through", `{"type":"typing","data":[1,2]}`, KindEvent, "typing", `[1,2]`},
		{"extra fields ignored", `{"type":"read_receipt","ts":10}`, KindEvent, "read_receipt", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Decode([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, f.Kind)
			assert.Equal(t, tt.wantType, f.Type)
			assert.Equal(t, tt.wantData, string(f.Data))
			assert.Equal(t, tt.input, string(f.Raw))
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  error
	}{
		{"empty", []byte(""), ErrEmpty},
		{"whitespace", []byte("  \n"), ErrEmpty},
		{"bare token", []byte("pong"), ErrMalformed},
		{"array", []byte(`[{"type":"pong"}]`), ErrMalformed},
		{"truncated", []byte(`{"type":"new_mess`), ErrMalformed},
		{"invalid utf8", []byte{'{', 0xff, 0xfe, '}'}, ErrMalformed},
		{"type not string", []byte(`{"type":5}`), ErrMalformed},
		{"no type", []byte(`{"data":{}}`), ErrMissingType},
		{"empty type", []byte(`{"type":""}`), ErrMissingType},
		{"null type", []byte(`{"type":null}`), ErrMissingType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeNewMessage(t *testing.T) {
	f, err := Decode([]byte(`{"type":"new_message","data":{"conversation_id":"c1","message":{"id":5,"content":"hi","direction":"incoming"}}}`))
	require.NoError(t, err)

	nm, err := DecodeNewMessage(f.Data)
	require.NoError(t, err)
	assert.Equal(t, "c1", nm.ConversationID)
	assert.Equal(t, int64(5), nm.Message.ID)
	assert.Equal(t, "hi", nm.Message.Text())
	assert.JSONEq(t, `{"id":5,"content":"hi","direction":"incoming"}`, string(nm.Raw))
}

func TestDecodeNewMessage_NullMessage(t *testing.T) {
	nm, err := DecodeNewMessage([]byte(`{"conversation_id":"c9","message":null}`))
	require.NoError(t, err)
	assert.Equal(t, "c9", nm.ConversationID)
	assert.Equal(t, int64(0), nm.Message.ID)
}

func TestDecodeNewMessage_Malformed(t *testing.T) {
	_, err := DecodeNewMessage([]byte(`"c1"`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = DecodeNewMessage([]byte(`{"conversation_id":"c1","message":"oops"}`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "ping", KindPing.String())
	assert.Equal(t, "pong", KindPong.String())
	assert.Equal(t, "event", KindEvent.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}
