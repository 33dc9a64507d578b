package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveWait(t *testing.T) {
	m := New()
	m.ObserveWait(1500 * time.Millisecond)
	m.ObserveWait(500 * time.Millisecond)

	if got := testutil.ToFloat64(m.Waits); got != 2 {
		t.Errorf("Waits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.WaitSeconds); got != 2 {
		t.Errorf("WaitSeconds = %v, want 2", got)
	}
}

func TestSnapshot(t *testing.T) {
	m := New()
	m.Requests.Add(3)
	m.CacheHits.WithLabelValues(CacheResponse).Inc()
	m.Failures.WithLabelValues("timeout").Inc()

	samples, err := m.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	byName := make(map[string]Sample)
	for _, s := range samples {
		byName[s.Name] = s
	}
	if s := byName["hepgraph_requests_total"]; s.Value != 3 {
		t.Errorf("requests_total = %v, want 3", s.Value)
	}
	hit, ok := byName["hepgraph_cache_hits_total"]
	if !ok || hit.Labels["cache"] != CacheResponse || hit.Value != 1 {
		t.Errorf("cache_hits_total = %+v", hit)
	}
	if s := byName["hepgraph_fetch_failures_total"]; s.Labels["reason"] != "timeout" {
		t.Errorf("fetch_failures_total labels = %v", s.Labels)
	}
}
