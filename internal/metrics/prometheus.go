package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus records store metrics as Prometheus collectors.
type Prometheus struct {
	hits    *prometheus.CounterVec
	misses  *prometheus.CounterVec
	errors  *prometheus.CounterVec
	bytes   *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// NewPrometheus creates the collectors and registers them with reg. A nil
// reg registers with prometheus.DefaultRegisterer.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p := &Prometheus{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "savestate",
			Name:      "cache_hits_total",
			Help:      "In-memory cache hits by cache name.",
		}, []string{"cache"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "savestate",
			Name:      "cache_misses_total",
			Help:      "In-memory cache misses by cache name.",
		}, []string{"cache"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "savestate",
			Name:      "errors_total",
			Help:      "Failed store operations by operation.",
		}, []string{"op"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "savestate",
			Name:      "payload_bytes_total",
			Help:      "Payload bytes written or read by operation.",
		}, []string{"op"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "savestate",
			Name:      "operation_duration_seconds",
			Help:      "Store operation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"op"}),
	}
	for _, c := range []prometheus.Collector{p.hits, p.misses, p.errors, p.bytes, p.latency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) RecordHit(cache string)  { p.hits.WithLabelValues(cache).Inc() }
func (p *Prometheus) RecordMiss(cache string) { p.misses.WithLabelValues(cache).Inc() }
func (p *Prometheus) RecordError(op string)   { p.errors.WithLabelValues(op).Inc() }

func (p *Prometheus) RecordLatency(op string, d time.Duration) {
	p.latency.WithLabelValues(op).Observe(d.Seconds())
}

func (p *Prometheus) RecordBytes(op string, n int) {
	p.bytes.WithLabelValues(op).Add(float64(n))
}
