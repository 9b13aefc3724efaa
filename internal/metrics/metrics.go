// Package metrics provides the MetricsRecorder interface, a noop
// implementation and a Prometheus-backed recorder.
package metrics

import "time"

// MetricsRecorder is the interface for recording operational metrics.
type MetricsRecorder interface {
	RecordHit(cache string)
	RecordMiss(cache string)
	RecordLatency(op string, d time.Duration)
	RecordError(op string)
	RecordBytes(op string, n int)
}

// Noop is a MetricsRecorder that discards all data.
type Noop struct{}

func (Noop) RecordHit(cache string)                   {}
func (Noop) RecordMiss(cache string)                  {}
func (Noop) RecordLatency(op string, d time.Duration) {}
func (Noop) RecordError(op string)                    {}
func (Noop) RecordBytes(op string, n int)             {}
