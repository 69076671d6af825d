package hashengine

// metrics.go is a thin abstraction over Prometheus so the engine can be used
// with or without metrics: when the caller supplies a *prometheus.Registry
// via WithMetrics, a real sink is created; otherwise a no-op sink is used
// and the hot path pays nothing for metric updates. Adapted from the
// sharded metricsSink this module grew out of — with a single engine
// (spec.md has no sharding concept) there is no "shard" label to attach.
//
// © 2025 hashtable-engine authors. MIT License.

import "github.com/prometheus/client_golang/prometheus"

// metricsSink is the internal interface the engine talks to; it is never
// exposed outside the package.
type metricsSink interface {
	incPut()
	incGet()
	incHit()
	incMiss()
	incDelete()
	incTombstone()
	incResize(direction string)
	setItems(n int)
	setCapacity(n int)
	setMemoryBytes(n int64)
}

/* ---------------- no-op implementation ---------------- */

type noopMetrics struct{}

func (noopMetrics) incPut()               {}
func (noopMetrics) incGet()               {}
func (noopMetrics) incHit()               {}
func (noopMetrics) incMiss()               {}
func (noopMetrics) incDelete()            {}
func (noopMetrics) incTombstone()         {}
func (noopMetrics) incResize(string)      {}
func (noopMetrics) setItems(int)          {}
func (noopMetrics) setCapacity(int)       {}
func (noopMetrics) setMemoryBytes(int64)  {}

/* ---------------- Prometheus implementation ---------------- */

type promMetrics struct {
	puts       prometheus.Counter
	gets       prometheus.Counter
	hits       prometheus.Counter
	misses     prometheus.Counter
	deletes    prometheus.Counter
	tombstones prometheus.Counter
	resizes    *prometheus.CounterVec
	items      prometheus.Gauge
	capacity   prometheus.Gauge
	memory     prometheus.Gauge
}

func newPromMetrics(reg *prometheus.Registry) *promMetrics {
	pm := &promMetrics{
		puts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hashengine", Name: "puts_total", Help: "Number of Put calls.",
		}),
		gets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hashengine", Name: "gets_total", Help: "Number of Get calls.",
		}),
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hashengine", Name: "hits_total", Help: "Number of Get calls that found the key.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hashengine", Name: "misses_total", Help: "Number of Get calls that did not find the key.",
		}),
		deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hashengine", Name: "deletes_total", Help: "Number of successful Delete calls.",
		}),
		tombstones: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hashengine", Name: "tombstones_total", Help: "Number of buckets converted to tombstones.",
		}),
		resizes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hashengine", Name: "resizes_total", Help: "Number of table resizes.",
		}, []string{"direction"}),
		items: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hashengine", Name: "items", Help: "Current number of occupied buckets.",
		}),
		capacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hashengine", Name: "capacity", Help: "Current table capacity.",
		}),
		memory: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hashengine", Name: "memory_bytes", Help: "Approximate live key+value bytes.",
		}),
	}
	reg.MustRegister(pm.puts, pm.gets, pm.hits, pm.misses, pm.deletes,
		pm.tombstones, pm.resizes, pm.items, pm.capacity, pm.memory)
	return pm
}

func (m *promMetrics) incPut()          { m.puts.Inc() }
func (m *promMetrics) incGet()          { m.gets.Inc() }
func (m *promMetrics) incHit()          { m.hits.Inc() }
func (m *promMetrics) incMiss()         { m.misses.Inc() }
func (m *promMetrics) incDelete()       { m.deletes.Inc() }
func (m *promMetrics) incTombstone()    { m.tombstones.Inc() }
func (m *promMetrics) incResize(dir string) {
	m.resizes.WithLabelValues(dir).Inc()
}
func (m *promMetrics) setItems(n int)         { m.items.Set(float64(n)) }
func (m *promMetrics) setCapacity(n int)      { m.capacity.Set(float64(n)) }
func (m *promMetrics) setMemoryBytes(n int64) { m.memory.Set(float64(n)) }

func newMetricsSink(reg *prometheus.Registry) metricsSink {
	if reg == nil {
		return noopMetrics{}
	}
	return newPromMetrics(reg)
}
