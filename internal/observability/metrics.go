package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	latencyTotal map[string]time.Duration
	solves       int64
	tierChanges  int64
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Requests      map[string]int64 `json:"requests"`
	Errors        map[string]int64 `json:"errors"`
	AvgLatencyMs  map[string]int64 `json:"avg_latency_ms"`
	ProblemSolves int64            `json:"problem_solves"`
	TierChanges   int64            `json:"tier_changes"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		latencyTotal: make(map[string]time.Duration),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.latencyTotal[key] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordSolve counts an accepted solve.
func (m *Metrics) RecordSolve() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.solves++
}

// RecordTierChange counts a promotion.
func (m *Metrics) RecordTierChange() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tierChanges++
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Snapshot{
		Requests:      make(map[string]int64, len(m.requestCount)),
		Errors:        make(map[string]int64, len(m.errorCount)),
		AvgLatencyMs:  make(map[string]int64, len(m.latencyTotal)),
		ProblemSolves: m.solves,
		TierChanges:   m.tierChanges,
	}
	for k, v := range m.requestCount {
		s.Requests[k] = v
		if v > 0 {
			s.AvgLatencyMs[k] = (m.latencyTotal[k] / time.Duration(v)).Milliseconds()
		}
	}
	for k, v := range m.errorCount {
		s.Errors[k] = v
	}
	return s
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
