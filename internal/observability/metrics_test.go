package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordOnPrivateRegistry(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/complaints", "POST", 201, 15*time.Millisecond)
	m.RecordRequest("/complaints", "POST", 201, 5*time.Millisecond)
	m.RecordError("/complaints", "POST", "VALIDATION_FAILED")
	m.RecordComplaintSubmitted("MEDIUM")
	m.RecordEventPublished("complaint_submitted", nil)
	m.RecordEventPublished("complaint_submitted", errors.New("redis down"))

	assert.InDelta(t, 2, testutil.ToFloat64(m.requests.WithLabelValues("/complaints", "POST", "201")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.errors.WithLabelValues("/complaints", "POST", "VALIDATION_FAILED")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.complaintsSubmitted.WithLabelValues("MEDIUM")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.eventsPublished.WithLabelValues("complaint_submitted", "error")), 0)

	count, err := testutil.GatherAndCount(m.Registry(), "complaint_service_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordComplaintSubmitted("LOW")
		m.RecordEventPublished("x", nil)
	})
}
