package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/updates", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/api/updates", "GET", 200, 30*time.Millisecond)
	m.RecordError("/api/tickets", "POST", "VALIDATION_FAILED")
	m.RecordRefresh("telemetry", true)
	m.RecordRefresh("telemetry", false)
	m.RecordRefresh("telemetry", false)

	snap := m.Snapshot()
	assert.Equal(t, []Counter{{Key: "/api/updates|GET|200", Count: 2}}, snap.Requests)
	assert.Equal(t, int64(20), snap.AvgMillis["/api/updates|GET|200"])
	assert.Equal(t, []Counter{{Key: "/api/tickets|POST|VALIDATION_FAILED", Count: 1}}, snap.Errors)
	assert.Equal(t, []Counter{{Key: "telemetry|failed", Count: 2}, {Key: "telemetry|ok", Count: 1}}, snap.Refreshes)
}

func TestNilMetricsIgnoresRecords(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordRefresh("x", true)
	})
}
