package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/powerfleet/core/events"
	"github.com/kilianp07/powerfleet/core/logger"
	"github.com/kilianp07/powerfleet/core/metrics"
	"github.com/kilianp07/powerfleet/core/model"
	"github.com/kilianp07/powerfleet/core/monitoring"
	"github.com/kilianp07/powerfleet/core/planlog"
	"github.com/kilianp07/powerfleet/core/routing"
	"github.com/kilianp07/powerfleet/core/schedule"
	"github.com/kilianp07/powerfleet/internal/eventbus"
)

// ErrInternal is returned when the engine fails unexpectedly.
var ErrInternal = errors.New("internal scheduling error")

// Result is a solved plan.
type Result struct {
	PlanID     string
	Routes     []model.Route
	TotalTime  float64
	Exhaustive bool
	Search     schedule.Stats
	Matrix     routing.BuildStats
	Elapsed    time.Duration
}

// Planner orchestrates scheduling runs. It is safe for concurrent use; each
// Plan call works on its own registry and matrix.
type Planner struct {
	builder *routing.MatrixBuilder
	search  *schedule.Search
	log     logger.Logger
	bus     eventbus.EventBus
	now     func() time.Time
	newID   func() string

	mu      sync.RWMutex
	sink    metrics.MetricsSink
	store   planlog.Store
	monitor monitoring.Monitor
}

// New creates a Planner. The provider is required; a nil sink, bus or logger
// disables the corresponding reporting.
func New(provider routing.Provider, concurrency int, cfg schedule.Config, sink metrics.MetricsSink, bus eventbus.EventBus, log logger.Logger) (*Planner, error) {
	if provider == nil {
		return nil, fmt.Errorf("planner: nil routing provider")
	}
	log = logger.OrNop(log)
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Planner{
		builder: routing.NewMatrixBuilder(provider, concurrency, log, bus),
		search:  schedule.NewSearch(cfg, log),
		log:     log,
		bus:     bus,
		sink:    sink,
		store:   planlog.NopStore{},
		monitor: monitoring.NopMonitor{},
		now:     time.Now,
		newID:   uuid.NewString,
	}, nil
}

// SetLogStore configures the store used to persist plan records.
func (p *Planner) SetLogStore(store planlog.Store) {
	if store == nil {
		store = planlog.NopStore{}
	}
	p.mu.Lock()
	p.store = store
	p.mu.Unlock()
}

// SetMetricsSink replaces the sink plan results are recorded on.
func (p *Planner) SetMetricsSink(sink metrics.MetricsSink) {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	p.mu.Lock()
	p.sink = sink
	p.mu.Unlock()
}

// SetMonitor configures where internal failures are reported.
func (p *Planner) SetMonitor(m monitoring.Monitor) {
	p.mu.Lock()
	p.monitor = monitoring.OrNop(m)
	p.mu.Unlock()
}

// Plan schedules req. Validation problems are returned as
// *model.ValidationError, an impossible request wraps schedule.ErrInfeasible
// and unexpected engine failures wrap ErrInternal.
func (p *Planner) Plan(ctx context.Context, req model.Request) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorf("planner panic: %v", r)
			res, err = nil, fmt.Errorf("%w: %v", ErrInternal, r)
			p.report(err, nil)
		}
	}()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := p.now()
	planID := p.newID()
	reg, err := routing.NewRegistry(req.Depots, req.Tasks)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrInternal, err)
		p.report(err, map[string]string{"plan_id": planID})
		return nil, err
	}
	matrix, bstats := p.builder.Build(ctx, reg)
	p.recordMatrix(planID, reg.Len(), bstats)

	sol, err := p.search.Solve(ctx, schedule.Input{
		Depots:   reg.DepotIDs(),
		Tasks:    req.Tasks,
		Vehicles: req.Vehicles,
		Travel:   matrix,
	})
	elapsed := p.now().Sub(start)
	if err != nil {
		status := events.PlanInfeasible
		if !errors.Is(err, schedule.ErrInfeasible) {
			status = events.PlanFailed
			p.report(err, map[string]string{"plan_id": planID})
		}
		p.finish(ctx, req, events.PlanEvent{
			PlanID:  planID,
			Status:  status,
			Elapsed: elapsed,
			Time:    start,
		}, err.Error())
		p.log.Warnf("plan %s %s after %s: %v", planID, status, elapsed, err)
		return nil, fmt.Errorf("plan %s: %w", planID, err)
	}

	routes := schedule.Format(sol)
	p.finish(ctx, req, events.PlanEvent{
		PlanID:     planID,
		Status:     events.PlanSolved,
		Routes:     routes,
		TotalTime:  sol.TotalTime,
		Exhaustive: sol.Exhaustive,
		Elapsed:    elapsed,
		Time:       start,
	}, "")
	p.log.Infof("plan %s solved: %d tasks on %d vehicles, total %.3f h, exhaustive=%t, %d failed edges, %s",
		planID, len(req.Tasks), len(req.Vehicles), sol.TotalTime, sol.Exhaustive, bstats.Failed, elapsed)
	return &Result{
		PlanID:     planID,
		Routes:     routes,
		TotalTime:  sol.TotalTime,
		Exhaustive: sol.Exhaustive,
		Search:     sol.Stats,
		Matrix:     bstats,
		Elapsed:    elapsed,
	}, nil
}

func (p *Planner) report(err error, tags map[string]string) {
	p.mu.RLock()
	m := p.monitor
	p.mu.RUnlock()
	m.CaptureException(err, tags)
}

func (p *Planner) recordMatrix(planID string, locations int, st routing.BuildStats) {
	p.mu.RLock()
	sink := p.sink
	p.mu.RUnlock()
	rec, ok := sink.(metrics.MatrixRecorder)
	if !ok {
		return
	}
	if err := rec.RecordMatrixBuild(metrics.MatrixBuild{
		PlanID:    planID,
		Locations: locations,
		Requested: st.Requested,
		Failed:    st.Failed,
		Elapsed:   st.Elapsed,
		Time:      p.now(),
	}); err != nil {
		p.log.Errorf("record matrix build: %v", err)
	}
}

// finish reports a completed run on the bus, the metrics sink and the plan log.
func (p *Planner) finish(ctx context.Context, req model.Request, ev events.PlanEvent, msg string) {
	if p.bus != nil {
		p.bus.Publish(ev)
	}
	p.mu.RLock()
	sink, store := p.sink, p.store
	p.mu.RUnlock()

	if err := sink.RecordPlan(metrics.PlanResult{
		PlanID:     ev.PlanID,
		Status:     string(ev.Status),
		Tasks:      len(req.Tasks),
		Vehicles:   len(req.Vehicles),
		TotalTime:  ev.TotalTime,
		Exhaustive: ev.Exhaustive,
		Elapsed:    ev.Elapsed,
		Time:       ev.Time,
	}); err != nil {
		p.log.Errorf("record plan: %v", err)
	}

	rec := planlog.Record{
		PlanID:     ev.PlanID,
		Timestamp:  ev.Time,
		Status:     string(ev.Status),
		Message:    msg,
		Tasks:      make([]string, len(req.Tasks)),
		Vehicles:   make([]string, len(req.Vehicles)),
		TotalTime:  ev.TotalTime,
		Exhaustive: ev.Exhaustive,
		ElapsedMS:  float64(ev.Elapsed.Microseconds()) / 1000,
		Routes:     ev.Routes,
	}
	for i, t := range req.Tasks {
		rec.Tasks[i] = t.ID
	}
	for i, v := range req.Vehicles {
		rec.Vehicles[i] = v.ID
	}
	if err := store.Append(context.WithoutCancel(ctx), rec); err != nil {
		p.log.Errorf("append plan log: %v", err)
	}
}

// Plans returns the plan log records matching q.
func (p *Planner) Plans(ctx context.Context, q planlog.Query) ([]planlog.Record, error) {
	p.mu.RLock()
	store := p.store
	p.mu.RUnlock()
	return store.Query(ctx, q)
}
