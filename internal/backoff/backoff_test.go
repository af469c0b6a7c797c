package backoff

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	p := Default()
	assert.Equal(t, time.Second, p.Base)
	assert.Equal(t, 30*time.Second, p.Max)
}

func TestPolicy_Delay(t *testing.T) {
	p := Default()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{6, 30 * time.Second},
		{100, 30 * time.Second},
		{math.MaxInt32, 30 * time.Second},
		{-3, 1 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Delay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestPolicy_Delay_MatchesFormula(t *testing.T) {
	p := Default()
	for n := 0; n < 64; n++ {
		want := 30000.0
		if f := 1000 * math.Pow(2, float64(n)); f < want {
			want = f
		}
		assert.Equal(t, time.Duration(want)*time.Millisecond, p.Delay(n), "attempt %d", n)
	}
}

func TestPolicy_Delay_Monotonic(t *testing.T) {
	policies := []Policy{
		Default(),
		{Base: 10 * time.Millisecond, Max: 1 * time.Second},
		{Base: 3 * time.Millisecond, Max: 7 * time.Millisecond},
		{Base: time.Duration(math.MaxInt64 / 4), Max: time.Duration(math.MaxInt64)},
	}

	for _, p := range policies {
		prev := time.Duration(0)
		for n := 0; n < 200; n++ {
			d := p.Delay(n)
			assert.GreaterOrEqual(t, d, prev, "policy %+v attempt %d", p, n)
			assert.LessOrEqual(t, d, p.Max, "policy %+v attempt %d", p, n)
			prev = d
		}
	}
}

func TestPolicy_ZeroValueUsesDefaults(t *testing.T) {
	var p Policy
	assert.Equal(t, time.Second, p.Delay(0))
	assert.Equal(t, 30*time.Second, p.Delay(10))
}

func TestPolicy_BaseAboveMax(t *testing.T) {
	p := Policy{Base: time.Minute, Max: 10 * time.Second}
	assert.Equal(t, 10*time.Second, p.Delay(0))
	assert.Equal(t, 10*time.Second, p.Delay(5))
}
