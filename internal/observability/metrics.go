package observability

import (
	"sort"
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
	refreshCount map[string]int64
}

// Counter is one named counter value.
type Counter struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Requests  []Counter        `json:"requests"`
	Errors    []Counter        `json:"errors"`
	Refreshes []Counter        `json:"refreshes"`
	AvgMillis map[string]int64 `json:"avg_latency_ms"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		latencyTotal: make(map[string]time.Duration),
		refreshCount: make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := requestKey(route, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.latencyTotal[key] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	key := route + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordRefresh counts a background refresh by source and outcome.
func (m *Metrics) RecordRefresh(source string, ok bool) {
	if m == nil {
		return
	}
	key := source + "|ok"
	if !ok {
		key = source + "|failed"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshCount[key]++
}

// Snapshot copies the counters, sorted by key.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := Snapshot{
		Requests:  sortedCounters(m.requestCount),
		Errors:    sortedCounters(m.errorCount),
		Refreshes: sortedCounters(m.refreshCount),
		AvgMillis: make(map[string]int64, len(m.latencyTotal)),
	}
	for key, total := range m.latencyTotal {
		if n := m.requestCount[key]; n > 0 {
			snap.AvgMillis[key] = (total / time.Duration(n)).Milliseconds()
		}
	}
	return snap
}

func sortedCounters(src map[string]int64) []Counter {
	out := make([]Counter, 0, len(src))
	for key, count := range src {
		out = append(out, Counter{Key: key, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func requestKey(route, method string, status int) string {
	return route + "|" + method + "|" + strconv.Itoa(status)
}
