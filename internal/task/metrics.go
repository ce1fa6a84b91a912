package task

import (
	"sync"
	"time"
)

// Result is the outcome of one leaf execution.
type Result struct {
	Task     string
	Duration time.Duration
	Err      error
}

// Metrics tracks leaf executions.
type Metrics struct {
	results []Result
	mutex   sync.RWMutex
}

// Snapshot is a point-in-time copy of Metrics.
type Snapshot struct {
	Total         int
	Succeeded     int
	Failed        int
	TotalDuration time.Duration
	Results       []Result
}

// NewMetrics creates an empty tracker.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Record adds a result.
func (m *Metrics) Record(result Result) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.results = append(m.results, result)
}

// Snapshot returns the current totals with a copy of every result.
func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	s := Snapshot{
		Total:   len(m.results),
		Results: make([]Result, len(m.results)),
	}
	copy(s.Results, m.results)

	for _, r := range m.results {
		s.TotalDuration += r.Duration
		if r.Err != nil {
			s.Failed++
		} else {
			s.Succeeded++
		}
	}
	return s
}

// Count returns how many times the named task ran.
func (m *Metrics) Count(name string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	n := 0
	for _, r := range m.results {
		if r.Task == name {
			n++
		}
	}
	return n
}

// Reset drops all results.
func (m *Metrics) Reset() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.results = nil
}
