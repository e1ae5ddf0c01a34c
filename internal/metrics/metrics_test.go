package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordItemCountsOutcomes(t *testing.T) {
	m := NewMetrics()
	m.RecordItem("scene", nil)
	m.RecordItem("scene", nil)
	m.RecordItem("scene", errors.New("boom"))
	m.RecordTour(true, time.Second)
	m.AddDownloadedBytes(1024)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.items.WithLabelValues("scene", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.items.WithLabelValues("scene", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tours.WithLabelValues("success")))
	assert.Equal(t, 1024.0, testutil.ToFloat64(m.downloadedBytes))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordItem("color", nil)
		m.RecordTour(false, time.Second)
		m.ObserveRequest("create_scene", time.Millisecond)
		m.AddDownloadedBytes(10)
	})
	assert.Nil(t, m.Registry())
}

func TestTourTimings(t *testing.T) {
	tt := NewTourTimings("model-x")
	tt.StartPhase("scenes")
	time.Sleep(2 * time.Millisecond)
	tt.EndPhase("scenes")
	tt.StartPhase("colors")
	tt.EndPhase("colors")
	tt.EndPhase("never-started")
	elapsed := tt.Finalize()

	require.Contains(t, tt.Timings, "scenes")
	assert.NotContains(t, tt.Timings, "never-started")
	assert.GreaterOrEqual(t, tt.Timings["scenes"], 2.0)
	assert.GreaterOrEqual(t, elapsed, 2*time.Millisecond)

	summary := tt.Summary()
	assert.True(t, strings.HasPrefix(summary, "model-x: total="))
	assert.Less(t, strings.Index(summary, "scenes="), strings.Index(summary, "colors="))
}

func TestRunSummary(t *testing.T) {
	s := RunSummary{Tours: 4, Failed: 1, Scenes: 10, Duration: 1500 * time.Millisecond}
	assert.Contains(t, s.GetSummary(), "4 tours (75.00% success)")
	assert.Contains(t, RunSummary{}.GetSummary(), "0 tours (0.00% success)")
}
