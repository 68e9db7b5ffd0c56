package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPolicy_DelayDoublesUpToMax(t *testing.T) {
	p := Policy{Retries: 5, Initial: 100 * time.Millisecond, Max: time.Second}

	assert.Equal(t, 100*time.Millisecond, p.Delay(0))
	assert.Equal(t, 200*time.Millisecond, p.Delay(1))
	assert.Equal(t, 400*time.Millisecond, p.Delay(2))
	assert.Equal(t, 800*time.Millisecond, p.Delay(3))
	assert.Equal(t, time.Second, p.Delay(4))
	assert.Equal(t, time.Second, p.Delay(60))
}

func TestPolicy_JitterBounds(t *testing.T) {
	tests := []struct {
		name   string
		random float64
		want   time.Duration
	}{
		{"lowest", 0.0, 90 * time.Millisecond},
		{"middle", 0.5, 100 * time.Millisecond},
		{"high", 0.75, 105 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Policy{Initial: 100 * time.Millisecond, Max: time.Second, Jitter: 0.1,
				rand: func() float64 { return tt.random }}
			assert.Equal(t, tt.want, p.Delay(0))
		})
	}
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 3, p.Retries)
	assert.Equal(t, 100*time.Millisecond, p.Initial)
	assert.Equal(t, time.Minute, p.Max)
}
