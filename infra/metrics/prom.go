package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/powerfleet/core/metrics"
)

// PromSink records scheduling runs in Prometheus metrics.
type PromSink struct {
	plans        *prometheus.CounterVec
	planHours    *prometheus.HistogramVec
	routeEnergy  *prometheus.GaugeVec
	matrixBuild  prometheus.Histogram
	edgeFailures prometheus.Counter
}

// NewPromSink registers plan metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	plans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plans_total",
		Help: "Total number of scheduling runs by outcome",
	}, []string{"status", "exhaustive"})
	planHours := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "plan_total_time_hours",
		Help:    "Sum of trip durations of solved plans",
		Buckets: []float64{0.5, 1, 2, 4, 8, 16, 32, 64},
	}, []string{"exhaustive"})
	routeEnergy := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "route_energy_kwh",
		Help: "Energy delivered by each vehicle in the last solved plan",
	}, []string{"vehicle_id"})
	matrixBuild := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "travel_matrix_build_seconds",
		Help:    "Time spent querying the routing provider for a travel matrix",
		Buckets: prometheus.DefBuckets,
	})
	edgeFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "travel_matrix_edge_failures_total",
		Help: "Number of routing queries that fell back to the sentinel duration",
	})

	var err error
	if plans, err = register(reg, plans); err != nil {
		return nil, err
	}
	if planHours, err = register(reg, planHours); err != nil {
		return nil, err
	}
	if routeEnergy, err = register(reg, routeEnergy); err != nil {
		return nil, err
	}
	if matrixBuild, err = register(reg, matrixBuild); err != nil {
		return nil, err
	}
	if edgeFailures, err = register(reg, edgeFailures); err != nil {
		return nil, err
	}
	return &PromSink{
		plans:        plans,
		planHours:    planHours,
		routeEnergy:  routeEnergy,
		matrixBuild:  matrixBuild,
		edgeFailures: edgeFailures,
	}, nil
}

// register adds c to reg or returns the collector registered before it.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPlan counts the run and observes the total time of solved plans.
func (s *PromSink) RecordPlan(res coremetrics.PlanResult) error {
	exhaustive := strconv.FormatBool(res.Exhaustive)
	s.plans.WithLabelValues(res.Status, exhaustive).Inc()
	if res.Status == "solved" {
		s.planHours.WithLabelValues(exhaustive).Observe(res.TotalTime)
	}
	return nil
}

// RecordRoutes sets the energy gauge of every routed vehicle.
func (s *PromSink) RecordRoutes(routes []coremetrics.RouteResult) error {
	for _, r := range routes {
		s.routeEnergy.WithLabelValues(r.VehicleID).Set(r.TotalEnergy)
	}
	return nil
}

// RecordMatrixBuild observes the matrix build duration.
func (s *PromSink) RecordMatrixBuild(ev coremetrics.MatrixBuild) error {
	s.matrixBuild.Observe(ev.Elapsed.Seconds())
	return nil
}

// RecordEdgeFailure increments the edge failure counter.
func (s *PromSink) RecordEdgeFailure(coremetrics.EdgeFailure) error {
	s.edgeFailures.Inc()
	return nil
}
