// Package mock provides test doubles for the pipeline's collaborators.
package mock

import (
	"time"
)

// RecordingStatter is used for testing. It sums counts by name and records
// the names of timings it has seen. Not threadsafe.
type RecordingStatter struct {
	Counts  map[string]int64
	Tagged  map[string]int64
	Timings []string
}

// Count implements Count. Besides the total per name, each tag gets its own
// "name|tag" entry in Tagged.
func (r *RecordingStatter) Count(name string, value int64, rate float64, tags ...string) {
	if r.Counts == nil {
		r.Counts = make(map[string]int64)
		r.Tagged = make(map[string]int64)
	}
	r.Counts[name] += value
	for _, tag := range tags {
		r.Tagged[name+"|"+tag] += value
	}
}

// Gauge implements Gauge.
func (r *RecordingStatter) Gauge(name string, value float64, rate float64, tags ...string) {}

// Histogram implements Histogram.
func (r *RecordingStatter) Histogram(name string, value float64, rate float64, tags ...string) {}

// Set implements Set.
func (r *RecordingStatter) Set(name string, value string, rate float64, tags ...string) {}

// Timing implements Timing.
func (r *RecordingStatter) Timing(name string, value time.Duration, rate float64, tags ...string) {
	r.Timings = append(r.Timings, name)
}
