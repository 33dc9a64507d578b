package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Mode names accepted by New.
const (
	ModeWindow = "window"
	ModeBucket = "bucket"
)

// Bucket is a token-bucket Gate. Half of maxRequests is available as a
// burst and the rest refills across the window, spaced slightly wider than
// window/refill. A full burst plus every refill that lands inside one window
// therefore never exceeds maxRequests. It is not safe for concurrent use.
type Bucket struct {
	settings

	limiter  *rate.Limiter
	burst    int
	interval time.Duration
}

// NewBucket creates a token-bucket gate allowing maxRequests per window.
// Non-positive arguments fall back to the INSPIRE defaults.
func NewBucket(maxRequests int, window time.Duration, opts ...Option) *Bucket {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultTimeWindow
	}
	s := newSettings(opts)

	burst := max(maxRequests/2, 1)
	refill := max(maxRequests-burst, 1)
	interval := window/time.Duration(refill) + max(s.margin, time.Millisecond)

	return &Bucket{
		settings: s,
		limiter:  rate.NewLimiter(rate.Every(interval), burst),
		burst:    burst,
		interval: interval,
	}
}

// Burst returns how many requests may be issued back to back.
func (b *Bucket) Burst() int {
	return b.burst
}

// Interval returns the spacing between refilled tokens.
func (b *Bucket) Interval() time.Duration {
	return b.interval
}

// Acquire implements Gate.
func (b *Bucket) Acquire(ctx context.Context) error {
	now := b.now()
	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return fmt.Errorf("rate limiter: burst exceeded")
	}
	if d := r.DelayFrom(now); d > 0 {
		b.logger.Info().
			Dur("wait", d).
			Int("burst", b.burst).
			Msg("rate limit reached, waiting")
		if b.observer != nil {
			b.observer(d)
		}
		if err := b.sleep(ctx, d); err != nil {
			r.CancelAt(b.now())
			return fmt.Errorf("rate limiter: %w", err)
		}
	}
	b.logger.Debug().
		Dur("interval", b.interval).
		Msg("request slot acquired")
	return nil
}

// New builds the Gate named by mode. An empty mode selects ModeWindow.
func New(mode string, maxRequests int, window time.Duration, opts ...Option) (Gate, error) {
	switch mode {
	case "", ModeWindow:
		return NewWindow(maxRequests, window, opts...), nil
	case ModeBucket:
		return NewBucket(maxRequests, window, opts...), nil
	default:
		return nil, fmt.Errorf("invalid limiter %q: must be %s or %s", mode, ModeWindow, ModeBucket)
	}
}
