package llm

import (
	"sync"

	"golang.org/x/time/rate"
)

// flowLimiter keeps one token bucket per flow tag. Each bucket allows rps
// requests per second after an initial burst.
type flowLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// newFlowLimiter returns nil when rps <= 0; a nil limiter never blocks.
func newFlowLimiter(rps float64, burst int) *flowLimiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &flowLimiter{limit: rate.Limit(rps), burst: burst, buckets: map[string]*rate.Limiter{}}
}

func (l *flowLimiter) bucket(flow string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[flow]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[flow] = b
	}
	return b
}
