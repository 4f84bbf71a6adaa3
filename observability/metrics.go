package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// SubmitterMetrics records transaction submission outcomes and the polling
// effort spent confirming them.
type SubmitterMetrics struct {
	outcomes     *prometheus.CounterVec
	pollAttempts prometheus.Histogram
}

var (
	submitterOnce sync.Once
	submitterReg  *SubmitterMetrics

	activityOnce sync.Once
	activityReg  *ActivityMetrics
)

// Submitter returns the lazily-initialised submission metrics registry.
func Submitter() *SubmitterMetrics {
	submitterOnce.Do(func() {
		submitterReg = &SubmitterMetrics{
			outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "creekbot",
				Subsystem: "submit",
				Name:      "outcomes_total",
				Help:      "Terminal submission outcomes segmented by operation.",
			}, []string{"operation", "outcome"}),
			pollAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace: "creekbot",
				Subsystem: "submit",
				Name:      "poll_attempts",
				Help:      "Polling attempts needed before a receipt was obtained.",
				Buckets:   []float64{1, 2, 3, 5, 8, 10},
			}),
		}
		prometheus.MustRegister(submitterReg.outcomes, submitterReg.pollAttempts)
	})
	return submitterReg
}

// Record counts one terminal outcome for an operation.
func (m *SubmitterMetrics) Record(operation, outcome string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(operation, outcome).Inc()
}

// ObservePollAttempts records how many attempts a confirmation needed.
func (m *SubmitterMetrics) ObservePollAttempts(attempts int) {
	if m == nil {
		return
	}
	m.pollAttempts.Observe(float64(attempts))
}

// ActivityMetrics records per-account activity progress.
type ActivityMetrics struct {
	operations *prometheus.CounterVec
	cycles     prometheus.Counter
}

// Activity returns the lazily-initialised activity metrics registry.
func Activity() *ActivityMetrics {
	activityOnce.Do(func() {
		activityReg = &ActivityMetrics{
			operations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "creekbot",
				Subsystem: "activity",
				Name:      "operations_total",
				Help:      "Scheduled operations segmented by kind and result.",
			}, []string{"operation", "result"}),
			cycles: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "creekbot",
				Subsystem: "activity",
				Name:      "cycles_total",
				Help:      "Completed full activity cycles across all accounts.",
			}),
		}
		prometheus.MustRegister(activityReg.operations, activityReg.cycles)
	})
	return activityReg
}

// RecordOperation counts one scheduled operation result.
func (m *ActivityMetrics) RecordOperation(operation, result string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, result).Inc()
}

// RecordCycle counts one completed activity cycle.
func (m *ActivityMetrics) RecordCycle() {
	if m == nil {
		return
	}
	m.cycles.Inc()
}
