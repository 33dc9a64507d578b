// Package ratelimit bounds how many API requests are issued per unit time.
package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultMaxRequests is the INSPIRE allowance per window.
	DefaultMaxRequests = 15

	// DefaultTimeWindow is the length of the sliding window.
	DefaultTimeWindow = 5 * time.Second

	// DefaultMargin is added to every computed sleep so the oldest
	// timestamp has definitely left the window when we wake up.
	DefaultMargin = 50 * time.Millisecond
)

// Gate is consulted before every network request.
type Gate interface {
	// Acquire blocks until a request may be issued and accounts for it.
	Acquire(ctx context.Context) error
}

// WaitObserver is notified each time a Gate has to sleep.
type WaitObserver func(d time.Duration)

// settings are shared by every Gate implementation.
type settings struct {
	margin   time.Duration
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	logger   zerolog.Logger
	observer WaitObserver
}

// Option configures a Window or a Bucket.
type Option func(*settings)

func newSettings(opts []Option) settings {
	s := settings{
		margin: DefaultMargin,
		now:    time.Now,
		sleep:  sleepContext,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithClock replaces the wall clock (for testing).
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

// WithSleeper replaces the sleep function (for testing).
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *settings) {
		s.sleep = sleep
	}
}

// WithMargin overrides the safety margin added to each sleep.
func WithMargin(d time.Duration) Option {
	return func(s *settings) {
		s.margin = d
	}
}

// WithLogger sets the logger used to report waits.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

// WithWaitObserver registers a callback invoked before each sleep.
func WithWaitObserver(fn WaitObserver) Option {
	return func(s *settings) {
		s.observer = fn
	}
}

// Window is a sliding-window limiter backed by a queue of issuance
// timestamps, oldest first. It is not safe for concurrent use.
type Window struct {
	settings

	maxRequests int
	window      time.Duration
	queue       []time.Time
}

// NewWindow creates a limiter allowing maxRequests per window.
// Non-positive arguments fall back to the INSPIRE defaults.
func NewWindow(maxRequests int, window time.Duration, opts ...Option) *Window {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultTimeWindow
	}
	return &Window{
		settings:    newSettings(opts),
		maxRequests: maxRequests,
		window:      window,
	}
}

// Record appends an issuance at now and prunes expired entries from the
// front. An entry is expired when now - entry > window, so an entry sitting
// exactly on the boundary is kept.
func (w *Window) Record(now time.Time) {
	w.queue = append(w.queue, now)
	w.prune(now)
}

func (w *Window) prune(now time.Time) {
	i := 0
	for i < len(w.queue) && now.Sub(w.queue[i]) > w.window {
		i++
	}
	if i > 0 {
		w.queue = append(w.queue[:0], w.queue[i:]...)
	}
}

// CanIssue reports whether a request may be issued at now.
func (w *Window) CanIssue(now time.Time) bool {
	if len(w.queue) < w.maxRequests {
		return true
	}
	return now.Sub(w.queue[0]) >= w.window
}

// AwaitSlot sleeps until CanIssue is true. It re-checks after every wake-up
// because the oldest timestamp may still be in the window when the clock is
// coarse.
func (w *Window) AwaitSlot(ctx context.Context) error {
	for {
		now := w.now()
		if w.CanIssue(now) {
			return nil
		}
		oldest, _ := w.Oldest()
		remaining := w.window - now.Sub(oldest)
		if remaining < 0 {
			remaining = 0
		}
		d := remaining + w.margin
		w.logger.Info().
			Dur("wait", d).
			Int("in_window", len(w.queue)).
			Msg("rate limit reached, waiting")
		if w.observer != nil {
			w.observer(d)
		}
		if err := w.sleep(ctx, d); err != nil {
			return err
		}
	}
}

// Acquire implements Gate.
func (w *Window) Acquire(ctx context.Context) error {
	if !w.CanIssue(w.now()) {
		if err := w.AwaitSlot(ctx); err != nil {
			return err
		}
	}
	w.Record(w.now())
	w.logger.Debug().
		Int("in_window", len(w.queue)).
		Dur("window", w.window).
		Msg("request slot acquired")
	return nil
}

// Len returns the number of timestamps currently tracked.
func (w *Window) Len() int {
	return len(w.queue)
}

// Oldest returns the oldest tracked timestamp.
func (w *Window) Oldest() (time.Time, bool) {
	if len(w.queue) == 0 {
		return time.Time{}, false
	}
	return w.queue[0], true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
