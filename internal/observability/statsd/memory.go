package statsd

import (
	"sync"
	"time"
)

// Sample is one metric captured by a MemorySink.
type Sample struct {
	Kind  string
	Name  string
	Value float64
	Tags  map[string]string
}

// MemorySink records metrics in memory for assertions in tests.
type MemorySink struct {
	mu      sync.Mutex
	samples []Sample
}

var _ Sink = (*MemorySink)(nil)

// Count records a counter sample.
func (m *MemorySink) Count(name string, value int64, tags map[string]string) {
	m.add(Sample{Kind: "c", Name: name, Value: float64(value), Tags: cleanTags(tags)})
}

// Gauge records a gauge sample.
func (m *MemorySink) Gauge(name string, value float64, tags map[string]string) {
	m.add(Sample{Kind: "g", Name: name, Value: value, Tags: cleanTags(tags)})
}

// Timing records a timing sample in milliseconds.
func (m *MemorySink) Timing(name string, value time.Duration, tags map[string]string) {
	m.add(Sample{Kind: "ms", Name: name, Value: float64(value) / float64(time.Millisecond), Tags: cleanTags(tags)})
}

// Samples returns a copy of everything recorded so far.
func (m *MemorySink) Samples() []Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Sample, len(m.samples))
	copy(out, m.samples)
	return out
}

// Sum adds up every counter named name whose tags include all of match.
func (m *MemorySink) Sum(name string, match map[string]string) int64 {
	var total int64
	for _, s := range m.Samples() {
		if s.Kind != "c" || s.Name != name || !tagsMatch(s.Tags, match) {
			continue
		}
		total += int64(s.Value)
	}
	return total
}

func (m *MemorySink) add(s Sample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, s)
}

func tagsMatch(tags, match map[string]string) bool {
	for k, v := range match {
		if tags[k] != v {
			return false
		}
	}
	return true
}
