package ratelimit

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeClock advances only when sleep is called.
type fakeClock struct {
	t      time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(_ context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	c.t = c.t.Add(d)
	return nil
}

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestWindow(c *fakeClock) *Window {
	return NewWindow(15, 5*time.Second, WithClock(c.now), WithSleeper(c.sleep))
}

func TestCanIssue_EmptyQueue(t *testing.T) {
	c := newFakeClock()
	w := newTestWindow(c)
	if !w.CanIssue(c.now()) {
		t.Error("CanIssue() = false on empty queue, want true")
	}
}

func TestCanIssue_FifteenWithinWindow(t *testing.T) {
	c := newFakeClock()
	w := newTestWindow(c)

	for i := 0; i < 15; i++ {
		if !w.CanIssue(c.now()) {
			t.Fatalf("CanIssue() = false before issuance %d, want true", i+1)
		}
		w.Record(c.now())
		c.advance(100 * time.Millisecond)
	}

	if w.CanIssue(c.now()) {
		t.Error("CanIssue() = true for 16th issuance within window, want false")
	}
}

func TestCanIssue_OldestAgedOut(t *testing.T) {
	c := newFakeClock()
	w := newTestWindow(c)
	for i := 0; i < 15; i++ {
		w.Record(c.now())
	}

	c.advance(5 * time.Second)
	if !w.CanIssue(c.now()) {
		t.Error("CanIssue() = false when oldest is exactly window old, want true")
	}
}

func TestRecord_PrunesStrictlyOlderThanWindow(t *testing.T) {
	c := newFakeClock()
	w := newTestWindow(c)

	start := c.now()
	w.Record(start)
	w.Record(start.Add(time.Second))

	// Exactly on the boundary: retained.
	w.Record(start.Add(5 * time.Second))
	if w.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (boundary entry retained)", w.Len())
	}

	// Just past the boundary for the first entry.
	w.Record(start.Add(5*time.Second + time.Nanosecond))
	if w.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 after pruning one entry", w.Len())
	}
	oldest, ok := w.Oldest()
	if !ok || !oldest.Equal(start.Add(time.Second)) {
		t.Errorf("Oldest() = %v, want %v", oldest, start.Add(time.Second))
	}
}

func TestAcquire_SixteenthBlocksUntilOldestAges(t *testing.T) {
	c := newFakeClock()
	w := newTestWindow(c)
	ctx := context.Background()

	start := c.now()
	for i := 0; i < 15; i++ {
		if err := w.Acquire(ctx); err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
		c.advance(10 * time.Millisecond)
	}
	if len(c.sleeps) != 0 {
		t.Fatalf("slept %d times during the first 15 requests, want 0", len(c.sleeps))
	}

	if err := w.Acquire(ctx); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if len(c.sleeps) == 0 {
		t.Fatal("16th Acquire() did not sleep")
	}
	if elapsed := c.now().Sub(start); elapsed < 5*time.Second {
		t.Errorf("16th request issued after %v, want >= 5s", elapsed)
	}
	if w.Len() > 15 {
		t.Errorf("Len() = %d, want <= 15", w.Len())
	}
}

func TestAwaitSlot_SleepsRemainingPlusMargin(t *testing.T) {
	c := newFakeClock()
	w := newTestWindow(c)
	for i := 0; i < 15; i++ {
		w.Record(c.now())
	}
	c.advance(2 * time.Second)

	if err := w.AwaitSlot(context.Background()); err != nil {
		t.Fatalf("AwaitSlot() error = %v", err)
	}
	want := 3*time.Second + DefaultMargin
	if len(c.sleeps) != 1 || c.sleeps[0] != want {
		t.Errorf("sleeps = %v, want [%v]", c.sleeps, want)
	}
}

func TestAwaitSlot_LoopsWhenClockLags(t *testing.T) {
	c := newFakeClock()
	calls := 0
	// The first sleep does not move the clock, as if the timer fired early.
	lagging := func(ctx context.Context, d time.Duration) error {
		calls++
		if calls == 1 {
			return nil
		}
		return c.sleep(ctx, d)
	}
	w := NewWindow(2, time.Second, WithClock(c.now), WithSleeper(lagging))
	w.Record(c.now())
	w.Record(c.now())

	if err := w.AwaitSlot(context.Background()); err != nil {
		t.Fatalf("AwaitSlot() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("sleep called %d times, want 2", calls)
	}
}

func TestAwaitSlot_ContextCancelled(t *testing.T) {
	c := newFakeClock()
	cancelled := func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}
	w := NewWindow(1, time.Second, WithClock(c.now), WithSleeper(cancelled))
	w.Record(c.now())

	err := w.AwaitSlot(context.Background())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("AwaitSlot() error = %v, want context.Canceled", err)
	}
}

func TestWaitObserver(t *testing.T) {
	c := newFakeClock()
	var observed []time.Duration
	w := NewWindow(1, time.Second,
		WithClock(c.now),
		WithSleeper(c.sleep),
		WithMargin(0),
		WithWaitObserver(func(d time.Duration) { observed = append(observed, d) }),
	)
	ctx := context.Background()
	if err := w.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	if err := w.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	if len(observed) != 1 || observed[0] != time.Second {
		t.Errorf("observed = %v, want [1s]", observed)
	}
}

func TestNew_Modes(t *testing.T) {
	tests := []struct {
		mode    string
		wantErr bool
	}{
		{"", false},
		{ModeWindow, false},
		{ModeBucket, false},
		{"leaky", true},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			g, err := New(tt.mode, 15, 5*time.Second)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%q) error = %v, wantErr %v", tt.mode, err, tt.wantErr)
			}
			if !tt.wantErr && g == nil {
				t.Errorf("New(%q) returned nil gate", tt.mode)
			}
		})
	}
}

func TestBucket_NeverExceedsWindowBudget(t *testing.T) {
	c := newFakeClock()
	b := NewBucket(15, 5*time.Second, WithClock(c.now), WithSleeper(c.sleep))
	ctx := context.Background()

	var issued []time.Time
	for i := 0; i < 60; i++ {
		if err := b.Acquire(ctx); err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
		issued = append(issued, c.now())
	}

	if len(c.sleeps) == 0 {
		t.Fatal("60 acquisitions never waited")
	}
	for i, start := range issued {
		n := 0
		for _, at := range issued[i:] {
			if at.Sub(start) <= 5*time.Second {
				n++
			}
		}
		if n > 15 {
			t.Fatalf("%d requests within 5s of issuance %d, want at most 15", n, i)
		}
	}
}

func TestBucket_BurstWithoutWaiting(t *testing.T) {
	c := newFakeClock()
	waits := 0
	b := NewBucket(15, 5*time.Second, WithClock(c.now), WithSleeper(c.sleep),
		WithWaitObserver(func(time.Duration) { waits++ }))
	ctx := context.Background()

	if b.Burst() != 7 {
		t.Fatalf("Burst() = %d, want 7", b.Burst())
	}
	if b.Interval() <= 5*time.Second/8 {
		t.Errorf("Interval() = %s, want more than %s", b.Interval(), 5*time.Second/8)
	}
	for i := 0; i < b.Burst(); i++ {
		if err := b.Acquire(ctx); err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
	}
	if waits != 0 {
		t.Errorf("waited %d times within burst, want 0", waits)
	}
	if err := b.Acquire(ctx); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if waits != 1 {
		t.Errorf("waits after burst = %d, want 1", waits)
	}
}

func TestBucket_LogsWaits(t *testing.T) {
	c := newFakeClock()
	var buf bytes.Buffer
	gate, err := New(ModeBucket, 2, time.Second,
		WithClock(c.now), WithSleeper(c.sleep), WithLogger(zerolog.New(&buf)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := gate.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
	}
	if !strings.Contains(buf.String(), "rate limit reached") {
		t.Errorf("log output = %q, want a wait message", buf.String())
	}
}

func TestBucket_SingleRequestBudget(t *testing.T) {
	c := newFakeClock()
	b := NewBucket(1, time.Second, WithClock(c.now), WithSleeper(c.sleep), WithMargin(0))
	ctx := context.Background()

	start := c.now()
	for i := 0; i < 2; i++ {
		if err := b.Acquire(ctx); err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
	}
	if got := c.now().Sub(start); got <= time.Second {
		t.Errorf("second request issued %s after the first, want more than 1s", got)
	}
}
