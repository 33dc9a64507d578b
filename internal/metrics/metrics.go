// Package metrics counts API traffic for a crawl.
package metrics

import (
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hepgraph"

// Cache labels.
const (
	CacheResponse = "response"
	CacheTitle    = "title"
)

// Metrics holds the counters updated by the fetch path.
type Metrics struct {
	Requests    prometheus.Counter
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
	Failures    *prometheus.CounterVec
	Waits       prometheus.Counter
	WaitSeconds prometheus.Counter

	gatherer prometheus.Gatherer
}

// New creates the counters and registers them on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Requests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "HTTP requests issued to the literature API.",
		}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Lookups answered from a local cache.",
		}, []string{"cache"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Lookups not found in a local cache.",
		}, []string{"cache"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Failed fetches by reason.",
		}, []string{"reason"}),
		Waits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_waits_total",
			Help:      "Times the rate limiter had to sleep.",
		}),
		WaitSeconds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_wait_seconds_total",
			Help:      "Total time spent sleeping in the rate limiter.",
		}),
		gatherer: reg,
	}
	reg.MustRegister(m.Requests, m.CacheHits, m.CacheMisses, m.Failures, m.Waits, m.WaitSeconds)
	return m
}

// ObserveWait records one limiter sleep. It matches ratelimit.WaitObserver.
func (m *Metrics) ObserveWait(d time.Duration) {
	m.Waits.Inc()
	m.WaitSeconds.Add(d.Seconds())
}

// Sample is one flattened counter value.
type Sample struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels,omitempty"`
	Value  float64           `json:"value"`
}

// Snapshot gathers all counters into a flat list sorted by name.
func (m *Metrics) Snapshot() ([]Sample, error) {
	families, err := m.gatherer.Gather()
	if err != nil {
		return nil, err
	}
	var samples []Sample
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			s := Sample{Name: mf.GetName(), Value: metric.GetCounter().GetValue()}
			if pairs := metric.GetLabel(); len(pairs) > 0 {
				s.Labels = make(map[string]string, len(pairs))
				for _, lp := range pairs {
					s.Labels[lp.GetName()] = lp.GetValue()
				}
			}
			samples = append(samples, s)
		}
	}
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].Name < samples[j].Name })
	return samples, nil
}
