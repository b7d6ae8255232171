package schedule

import "github.com/prometheus/client_golang/prometheus"

var (
	searchDuration   *prometheus.HistogramVec
	evaluationsTotal prometheus.Counter
	prunedTotal      prometheus.Counter
	timeoutsTotal    prometheus.Counter
)

func newCollectors() (*prometheus.HistogramVec, prometheus.Counter, prometheus.Counter, prometheus.Counter) {
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "schedule_search_duration_seconds",
			Help:    "Wall-clock duration of assignment searches",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 4, 8, 16},
		},
		[]string{"outcome"},
	)
	evals := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "schedule_evaluations_total",
			Help: "Number of task sequences evaluated",
		},
	)
	pruned := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "schedule_pruned_total",
			Help: "Number of search branches abandoned against the best bound",
		},
	)
	timeouts := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "schedule_search_timeouts_total",
			Help: "Number of searches stopped by the deadline or cancellation",
		},
	)
	return dur, evals, pruned, timeouts
}

func init() {
	searchDuration, evaluationsTotal, prunedTotal, timeoutsTotal = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers search metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(searchDuration, evaluationsTotal, prunedTotal, timeoutsTotal)
}

// ResetMetrics reinitializes the collectors for testing purposes and registers
// them on reg if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	searchDuration, evaluationsTotal, prunedTotal, timeoutsTotal = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
