// Package metrics holds the Prometheus collectors of the sync service.
//
// All recording methods are safe on a nil *Metrics, so components can be
// built without instrumentation in tests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "smartmeter"

// Cycle outcomes.
const (
	CycleOK         = "ok"
	CycleAuthFailed = "auth_failed"
	CycleFailed     = "failed"
	CycleCanceled   = "canceled"
	CycleOverlapped = "overlapped"
)

// Point outcomes.
const (
	PointReading   = "reading"
	PointNoReading = "no_reading"
	PointInactive  = "inactive"
	PointError     = "error"
)

// Import outcomes.
const (
	ImportImported = "imported"
	ImportSkipped  = "skipped"
	ImportError    = "error"
)

type Metrics struct {
	Cycles        *prometheus.CounterVec
	CycleDuration prometheus.Histogram
	Points        *prometheus.CounterVec
	Imports       *prometheus.CounterVec
	Statistics    prometheus.Counter
	Requests      *prometheus.CounterVec
	Latency       *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_cycles_total",
			Help:      "Poll cycles by outcome.",
		}, []string{"outcome"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_cycle_duration_seconds",
			Help:      "Duration of completed poll cycles.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		Points: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "point_polls_total",
			Help:      "Per metering point poll results by outcome.",
		}, []string{"outcome"}),
		Imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "historical_imports_total",
			Help:      "Historical import attempts by outcome.",
		}, []string{"outcome"}),
		Statistics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "statistics_inserted_total",
			Help:      "Statistic points newly written to the sink.",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_requests_total",
			Help:      "gRPC requests by method and status code.",
		}, []string{"method", "code"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "grpc_request_duration_seconds",
			Help:      "gRPC request latency by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	for _, c := range []prometheus.Collector{
		m.Cycles, m.CycleDuration, m.Points, m.Imports, m.Statistics, m.Requests, m.Latency,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ObserveCycle(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Cycles.WithLabelValues(outcome).Inc()
	if outcome == CycleOK {
		m.CycleDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) ObservePoint(outcome string) {
	if m == nil {
		return
	}
	m.Points.WithLabelValues(outcome).Inc()
}

// ObserveImport counts one import attempt and the statistic points it inserted.
func (m *Metrics) ObserveImport(outcome string, inserted int) {
	if m == nil {
		return
	}
	m.Imports.WithLabelValues(outcome).Inc()
	if inserted > 0 {
		m.Statistics.Add(float64(inserted))
	}
}
