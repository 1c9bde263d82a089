package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu            sync.Mutex
	requestCount  map[string]int64
	requestTime   map[string]time.Duration
	errorCount    map[string]int64
	authFailCount map[string]int64
	revokeFails   int64
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Requests           map[string]int64
	Errors             map[string]int64
	AuthFailures       map[string]int64
	RevocationFailures int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:  make(map[string]int64),
		requestTime:   make(map[string]time.Duration),
		errorCount:    make(map[string]int64),
		authFailCount: make(map[string]int64),
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
	m.requestTime[key] += duration
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

// RecordAuthFailure counts rejected sessions by internal reason.
func (m *Metrics) RecordAuthFailure(reason string) {
	if m == nil || reason == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authFailCount[reason]++
}

// RecordRevocationFailure counts a logout whose deny-list write failed.
func (m *Metrics) RecordRevocationFailure() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revokeFails++
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Requests:           copyCounts(m.requestCount),
		Errors:             copyCounts(m.errorCount),
		AuthFailures:       copyCounts(m.authFailCount),
		RevocationFailures: m.revokeFails,
	}
}

func copyCounts(in map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
