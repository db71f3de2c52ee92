package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeasingMetrics tracks reservation outcomes and pipeline movement.
type LeasingMetrics struct {
	leasesCreated        prometheus.Counter
	capacityRejections   *prometheus.CounterVec
	concurrencyConflicts prometheus.Counter
	statusTransitions    *prometheus.CounterVec
	sweepCompleted       prometheus.Counter
	sweepSpacesUpdated   prometheus.Counter
}

// NewLeasingMetrics registers the leasing collectors on reg. A nil registerer
// yields a no-op recorder.
func NewLeasingMetrics(reg prometheus.Registerer) *LeasingMetrics {
	if reg == nil {
		return &LeasingMetrics{}
	}
	m := &LeasingMetrics{
		leasesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leasing",
			Name:      "leases_created_total",
			Help:      "Leases created through checkout or staff booking.",
		}),
		capacityRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leasing",
			Name:      "rejections_total",
			Help:      "Reservation requests rejected by the availability engine.",
		}, []string{"reason"}),
		concurrencyConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leasing",
			Name:      "concurrency_conflicts_total",
			Help:      "Reservations that lost a race at insert time.",
		}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leasing",
			Name:      "status_transitions_total",
			Help:      "Pipeline moves by target status.",
		}, []string{"status"}),
		sweepCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leasing",
			Name:      "sweep_completed_leases_total",
			Help:      "Expired leases moved to Completado by the sweep.",
		}),
		sweepSpacesUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leasing",
			Name:      "sweep_spaces_released_total",
			Help:      "Spaces whose cached status changed during a sweep.",
		}),
	}
	reg.MustRegister(
		m.leasesCreated,
		m.capacityRejections,
		m.concurrencyConflicts,
		m.statusTransitions,
		m.sweepCompleted,
		m.sweepSpacesUpdated,
	)
	return m
}

func (m *LeasingMetrics) IncLeasesCreated(n int) {
	if m == nil || m.leasesCreated == nil || n <= 0 {
		return
	}
	m.leasesCreated.Add(float64(n))
}

// IncRejection records a rejected reservation. reason is the error code.
func (m *LeasingMetrics) IncRejection(reason string) {
	if m == nil || m.capacityRejections == nil {
		return
	}
	m.capacityRejections.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *LeasingMetrics) IncConcurrencyConflict() {
	if m == nil || m.concurrencyConflicts == nil {
		return
	}
	m.concurrencyConflicts.Inc()
}

func (m *LeasingMetrics) IncStatusTransition(status string) {
	if m == nil || m.statusTransitions == nil {
		return
	}
	m.statusTransitions.WithLabelValues(normalizeLabel(status)).Inc()
}

func (m *LeasingMetrics) ObserveSweep(completed, spacesUpdated int) {
	if m == nil || m.sweepCompleted == nil {
		return
	}
	m.sweepCompleted.Add(float64(completed))
	m.sweepSpacesUpdated.Add(float64(spacesUpdated))
}
