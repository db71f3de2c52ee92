package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeasingMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLeasingMetrics(reg)

	m.IncLeasesCreated(2)
	m.IncRejection("CAPACITY_EXCEEDED")
	m.IncRejection("CAPACITY_EXCEEDED")
	m.IncRejection("")
	m.IncConcurrencyConflict()
	m.IncStatusTransition("Asignado")
	m.ObserveSweep(3, 1)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	created := findMetricFamily(mfs, "adspace_leasing_leases_created_total")
	require.NotNil(t, created)
	assert.Equal(t, 2.0, created.GetMetric()[0].GetCounter().GetValue())

	got, err := fetchCounterValue(mfs, "adspace_leasing_rejections_total", "reason", "CAPACITY_EXCEEDED")
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	got, err = fetchCounterValue(mfs, "adspace_leasing_rejections_total", "reason", "unknown")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = fetchCounterValue(mfs, "adspace_leasing_status_transitions_total", "status", "Asignado")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	sweep := findMetricFamily(mfs, "adspace_leasing_sweep_completed_leases_total")
	require.NotNil(t, sweep)
	assert.Equal(t, 3.0, sweep.GetMetric()[0].GetCounter().GetValue())
}

func TestNilLeasingMetricsAreNoops(t *testing.T) {
	var m *LeasingMetrics
	assert.NotPanics(t, func() {
		m.IncLeasesCreated(1)
		m.IncRejection("x")
		m.IncConcurrencyConflict()
		m.IncStatusTransition("Completado")
		m.ObserveSweep(1, 1)
	})

	unregistered := NewLeasingMetrics(nil)
	assert.NotPanics(t, func() { unregistered.ObserveSweep(1, 1) })
}
