package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Fill(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheus(reg, "test")
	require.NoError(t, err)

	m.FillObserved("random", "mixed_gender", true, 28, 2, 1, 5*time.Millisecond)
	m.FillObserved("random", "mixed_gender", false, 10, 0, 0, time.Millisecond)
	m.ViolationsObserved("gender", 3)
	m.ViolationsObserved("group", 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.fills.WithLabelValues("random", "mixed_gender", "true")))
	assert.Equal(t, 38.0, testutil.ToFloat64(m.seated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.unseated))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.violations.WithLabelValues("gender")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.violations.WithLabelValues("group")))
}

func TestMetrics_Playback(t *testing.T) {
	m, err := NewPrometheus(prometheus.NewRegistry(), "")
	require.NoError(t, err)

	m.PlaybackEvent("start")
	m.PlaybackEvent("start")
	m.PlaybackEvent("complete")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activePlayers))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.playback.WithLabelValues("start")))
}

func TestMetrics_DoubleRegisterFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheus(reg, "dup")
	require.NoError(t, err)
	_, err = NewPrometheus(reg, "dup")
	assert.Error(t, err)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.FillObserved("random", "none", true, 1, 0, 0, 0)
	m.ViolationsObserved("gender", 1)
	m.PlaybackEvent("start")
}
