package cache

// metrics.go contains a thin abstraction over Prometheus so that iht-cache
// can be used with or without metrics.  When the user passes a
// *prometheus.Registry via WithMetrics(reg), we create the collectors and
// register them; otherwise a no-op sink is used and the hot path does not
// pay for metric updates.
//
// Metric names follow Prometheus conventions, suffixed with "_total" for
// counters.  Probe scans are a single counter vector labelled by operation
// so mean probe length can be derived on the Prometheus side.
//
// ┌──────────────────────────────────┬──────┬────────┐
// │ Metric                           │ Type │ Labels │
// ├──────────────────────────────────┼──────┼────────┤
// │ iht_cache_lookups_total          │ Ctr  │        │
// │ iht_cache_hits_total             │ Ctr  │        │
// │ iht_cache_misses_total           │ Ctr  │        │
// │ iht_cache_adds_total             │ Ctr  │        │
// │ iht_cache_updates_total          │ Ctr  │        │
// │ iht_cache_evictions_total        │ Ctr  │        │
// │ iht_cache_probe_scans_total      │ Ctr  │ op     │
// │ iht_cache_items                  │ Gge  │        │
// └──────────────────────────────────┴──────┴────────┘
//
// © 2025 iht-cache authors. MIT License.

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metricsSink is an internal interface abstracting away the concrete backend
// (Prometheus vs noop).  It is *not* exposed outside the package.
type metricsSink interface {
	incLookup()
	incHit(scans int)
	incMiss(scans int)
	incAdd(scans int)
	incUpdate(scans int)
	incEvict(scans int)
	setItems(n int)
}

/*
   ---------------- No-op implementation ----------------
*/

type noopMetrics struct{}

func (noopMetrics) incLookup()    {}
func (noopMetrics) incHit(int)    {}
func (noopMetrics) incMiss(int)   {}
func (noopMetrics) incAdd(int)    {}
func (noopMetrics) incUpdate(int) {}
func (noopMetrics) incEvict(int)  {}
func (noopMetrics) setItems(int)  {}

/*
   ---------------- Prometheus implementation ----------------
*/

type promMetrics struct {
	lookups   prometheus.Counter
	hits      prometheus.Counter
	misses    prometheus.Counter
	adds      prometheus.Counter
	updates   prometheus.Counter
	evictions prometheus.Counter
	scans     *prometheus.CounterVec
	items     prometheus.Gauge
}

func newPromMetrics(reg *prometheus.Registry) *promMetrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "iht_cache",
			Name:      name,
			Help:      help,
		})
	}

	pm := &promMetrics{
		lookups:   counter("lookups_total", "Number of directory lookups."),
		hits:      counter("hits_total", "Number of cache hits."),
		misses:    counter("misses_total", "Number of cache misses."),
		adds:      counter("adds_total", "Number of items inserted."),
		updates:   counter("updates_total", "Number of existing items updated in place."),
		evictions: counter("evictions_total", "Number of victim searches run."),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "iht_cache",
			Name:      "probe_scans_total",
			Help:      "Total probe distance walked, by operation.",
		}, []string{"op"}),
		items: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "iht_cache",
			Name:      "items",
			Help:      "Live items in the pool.",
		}),
	}

	// Register collectors. If registry is nil the caller decided to disable
	// metrics; function should never be called with nil.
	reg.MustRegister(pm.lookups, pm.hits, pm.misses, pm.adds, pm.updates,
		pm.evictions, pm.scans, pm.items)
	return pm
}

/*
   -------- promMetrics implements metricsSink --------
*/

func (m *promMetrics) incLookup() { m.lookups.Inc() }

func (m *promMetrics) incHit(scans int) {
	m.hits.Inc()
	m.scans.WithLabelValues("hit").Add(float64(scans))
}

func (m *promMetrics) incMiss(scans int) {
	m.misses.Inc()
	m.scans.WithLabelValues("miss").Add(float64(scans))
}

func (m *promMetrics) incAdd(scans int) {
	m.adds.Inc()
	m.scans.WithLabelValues("add").Add(float64(scans))
}

func (m *promMetrics) incUpdate(scans int) {
	m.updates.Inc()
	m.scans.WithLabelValues("update").Add(float64(scans))
}

func (m *promMetrics) incEvict(scans int) {
	m.evictions.Inc()
	m.scans.WithLabelValues("evict").Add(float64(scans))
}

func (m *promMetrics) setItems(n int) { m.items.Set(float64(n)) }

/*
   ---------------- Factory ----------------
*/

// newMetricsSink decides which implementation to use.
func newMetricsSink(reg *prometheus.Registry) metricsSink {
	if reg == nil {
		return noopMetrics{}
	}
	return newPromMetrics(reg)
}
