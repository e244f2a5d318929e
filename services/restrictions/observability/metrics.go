// Package observability exposes a hand-rolled Prometheus-text metrics
// registry for the few counters and gauges this service's pipeline cares
// about: event throughput, rule outcomes, and tripwire state.
package observability

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Counter is a monotonically increasing value.
type Counter struct{ value int64 }

func (c *Counter) Inc()         { atomic.AddInt64(&c.value, 1) }
func (c *Counter) Add(n int64)  { atomic.AddInt64(&c.value, n) }
func (c *Counter) Value() int64 { return atomic.LoadInt64(&c.value) }

// Gauge is a value that can move up and down, stored as micros for
// float-like precision under atomic int64 operations.
type Gauge struct{ value int64 }

func (g *Gauge) Set(v float64)  { atomic.StoreInt64(&g.value, int64(v*1e6)) }
func (g *Gauge) Value() float64 { return float64(atomic.LoadInt64(&g.value)) / 1e6 }

func labelKey(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%q", k, labels[k])
	}
	return strings.Join(parts, ",")
}

// Metrics is the central in-process metrics registry.
type Metrics struct {
	mu       sync.RWMutex
	counters map[string]map[string]*Counter
	gauges   map[string]map[string]*Gauge
}

// NewMetrics returns an empty registry.
func NewMetrics() *Metrics {
	return &Metrics{
		counters: make(map[string]map[string]*Counter),
		gauges:   make(map[string]map[string]*Gauge),
	}
}

func (m *Metrics) CounterInc(name string, labels map[string]string) {
	m.getCounter(name, labels).Inc()
}

func (m *Metrics) getCounter(name string, labels map[string]string) *Counter {
	key := labelKey(labels)
	m.mu.RLock()
	if byLabel, ok := m.counters[name]; ok {
		if c, ok := byLabel[key]; ok {
			m.mu.RUnlock()
			return c
		}
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.counters[name]; !ok {
		m.counters[name] = make(map[string]*Counter)
	}
	if _, ok := m.counters[name][key]; !ok {
		m.counters[name][key] = &Counter{}
	}
	return m.counters[name][key]
}

func (m *Metrics) GaugeSet(name string, labels map[string]string, v float64) {
	m.getGauge(name, labels).Set(v)
}

func (m *Metrics) getGauge(name string, labels map[string]string) *Gauge {
	key := labelKey(labels)
	m.mu.RLock()
	if byLabel, ok := m.gauges[name]; ok {
		if g, ok := byLabel[key]; ok {
			m.mu.RUnlock()
			return g
		}
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.gauges[name]; !ok {
		m.gauges[name] = make(map[string]*Gauge)
	}
	if _, ok := m.gauges[name][key]; !ok {
		m.gauges[name][key] = &Gauge{}
	}
	return m.gauges[name][key]
}

// TrackEventIngested counts one event accepted at the HTTP surface.
func (m *Metrics) TrackEventIngested(eventName string) {
	m.CounterInc("feature_restrictions_events_ingested_total", map[string]string{"event_name": eventName})
}

// TrackEventOutcome counts one consumed entry's terminal disposition:
// processed, dropped (poison-pill), or pending (left for redelivery).
func (m *Metrics) TrackEventOutcome(eventName, outcome string) {
	m.CounterInc("feature_restrictions_events_total", map[string]string{"event_name": eventName, "outcome": outcome})
}

// TrackRuleOutcome counts one rule.Process call's result.
func (m *Metrics) TrackRuleOutcome(ruleName, outcome string) {
	m.CounterInc("feature_restrictions_rule_outcomes_total", map[string]string{"rule": ruleName, "outcome": outcome})
}

// TrackTripwireState records the current disabled bit for a rule (1/0).
func (m *Metrics) TrackTripwireState(ruleName string, disabled bool) {
	val := 0.0
	if disabled {
		val = 1.0
	}
	m.GaugeSet("feature_restrictions_tripwire_disabled", map[string]string{"rule": ruleName}, val)
}

// Handler returns an http.HandlerFunc serving /metrics in Prometheus text
// exposition format.
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("# feature-restrictions metrics - %s\n\n", time.Now().UTC().Format(time.RFC3339)))

		m.mu.RLock()
		defer m.mu.RUnlock()

		for name, byLabel := range m.counters {
			sb.WriteString(fmt.Sprintf("# TYPE %s counter\n", name))
			for lk, c := range byLabel {
				if lk == "" {
					sb.WriteString(fmt.Sprintf("%s %d\n", name, c.Value()))
				} else {
					sb.WriteString(fmt.Sprintf("%s{%s} %d\n", name, lk, c.Value()))
				}
			}
			sb.WriteString("\n")
		}

		for name, byLabel := range m.gauges {
			sb.WriteString(fmt.Sprintf("# TYPE %s gauge\n", name))
			for lk, g := range byLabel {
				if lk == "" {
					sb.WriteString(fmt.Sprintf("%s %f\n", name, g.Value()))
				} else {
					sb.WriteString(fmt.Sprintf("%s{%s} %f\n", name, lk, g.Value()))
				}
			}
			sb.WriteString("\n")
		}

		_, _ = w.Write([]byte(sb.String()))
	}
}
