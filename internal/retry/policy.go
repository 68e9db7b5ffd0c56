package retry

import (
	"math/rand"
	"time"

	"github.com/vvka-141/pulseload/pkg/pulse"
)

// Policy bounds how often and how slowly a connect attempt is repeated.
// Each delay doubles the previous one up to Max and is spread by Jitter
// (0.1 means +/- 10%).
type Policy struct {
	Retries int
	Initial time.Duration
	Max     time.Duration
	Jitter  float64

	// rand returns values in [0, 1); nil means math/rand.
	rand func() float64
}

// DefaultPolicy is used for every store connection.
func DefaultPolicy() Policy {
	return Policy{
		Retries: pulse.DefaultRetryMaxAttempts,
		Initial: pulse.DefaultRetryInitialDelay,
		Max:     pulse.DefaultRetryMaxDelay,
		Jitter:  0.1,
	}
}

// Delay is the wait before retry number n, counting from zero.
func (p Policy) Delay(n int) time.Duration {
	d := p.Initial
	for i := 0; i < n && d < p.Max; i++ {
		d *= 2
	}
	if d > p.Max {
		d = p.Max
	}
	if p.Jitter <= 0 {
		return d
	}
	random := p.rand
	if random == nil {
		random = rand.Float64
	}
	return time.Duration(float64(d) * (1 + p.Jitter*(2*random()-1)))
}
