package metrics

import "time"

// PlanResult summarises one scheduling run.
type PlanResult struct {
	PlanID     string
	Status     string
	Tasks      int
	Vehicles   int
	TotalTime  float64
	Exhaustive bool
	Elapsed    time.Duration
	Time       time.Time
}

// MetricsSink records plan results for observability purposes.
type MetricsSink interface {
	RecordPlan(res PlanResult) error
}

// RouteResult is the per-vehicle part of a solved plan.
type RouteResult struct {
	PlanID      string
	VehicleID   string
	Depot       string
	Tasks       int
	Trips       int
	TotalTime   float64
	TotalEnergy float64
	PeakPower   float64
	Time        time.Time
}

// RouteRecorder records the routes of solved plans.
type RouteRecorder interface {
	RecordRoutes(routes []RouteResult) error
}

// MatrixBuild describes the travel matrix built for a plan.
type MatrixBuild struct {
	PlanID    string
	Locations int
	Requested int
	Failed    int
	Elapsed   time.Duration
	Time      time.Time
}

// MatrixRecorder records travel matrix builds.
type MatrixRecorder interface {
	RecordMatrixBuild(ev MatrixBuild) error
}

// EdgeFailure is a routing query that fell back to the sentinel duration.
type EdgeFailure struct {
	From  string
	To    string
	Error string
	Time  time.Time
}

// EdgeFailureRecorder records failed routing queries.
type EdgeFailureRecorder interface {
	RecordEdgeFailure(ev EdgeFailure) error
}

// NopSink implements MetricsSink and every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordPlan(PlanResult) error         { return nil }
func (NopSink) RecordRoutes([]RouteResult) error    { return nil }
func (NopSink) RecordMatrixBuild(MatrixBuild) error { return nil }
func (NopSink) RecordEdgeFailure(EdgeFailure) error { return nil }
