package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.ObserveCycle(CycleOK, 2*time.Second)
	m.ObserveCycle(CycleAuthFailed, 0)
	m.ObservePoint(PointReading)
	m.ObservePoint(PointError)
	m.ObserveImport(ImportImported, 96)
	m.ObserveImport(ImportSkipped, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cycles.WithLabelValues(CycleOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cycles.WithLabelValues(CycleAuthFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Points.WithLabelValues(PointError)))
	assert.Equal(t, 96.0, testutil.ToFloat64(m.Statistics))
	assert.Equal(t, 1, testutil.CollectAndCount(m.CycleDuration))

	// registering twice on the same registry fails
	_, err = New(reg)
	assert.Error(t, err)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCycle(CycleOK, time.Second)
		m.ObservePoint(PointInactive)
		m.ObserveImport(ImportError, 0)
	})
}
