package scenarios

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/powerfleet/core/events"
	"github.com/kilianp07/powerfleet/core/model"
	"github.com/kilianp07/powerfleet/core/planner"
	"github.com/kilianp07/powerfleet/core/routing"
	"github.com/kilianp07/powerfleet/core/schedule"
	"github.com/kilianp07/powerfleet/infra/logger"
	"github.com/kilianp07/powerfleet/infra/metrics"
	"github.com/kilianp07/powerfleet/internal/eventbus"
)

// TableProvider answers routing queries from a TravelDef. Locations are
// matched by coordinates, so every location in the request needs distinct
// coordinates unless the travel time between them is the default.
type TableProvider struct {
	ids   map[orb.Point][]string
	def   float64
	hours map[[2]string]float64
	fail  map[[2]string]bool
}

// NewTableProvider indexes the locations of req.
func NewTableProvider(req model.Request, td TravelDef) *TableProvider {
	p := &TableProvider{
		ids:   map[orb.Point][]string{},
		def:   td.Default,
		hours: map[[2]string]float64{},
		fail:  map[[2]string]bool{},
	}
	for _, d := range req.Depots {
		p.ids[d.Point()] = append(p.ids[d.Point()], d.ID)
	}
	for _, t := range req.Tasks {
		p.ids[t.Point()] = append(p.ids[t.Point()], t.ID)
	}
	for _, e := range td.Edges {
		p.hours[[2]string{e.From, e.To}] = e.Hours
	}
	for _, e := range td.Fail {
		p.fail[[2]string{e.From, e.To}] = true
	}
	return p
}

// Route returns the table entry. Shared coordinates resolve to the first
// override or failure among the matching pairs.
func (p *TableProvider) Route(_ context.Context, from, to orb.Point) (routing.Leg, error) {
	hours := p.def
	for _, a := range p.ids[from] {
		for _, b := range p.ids[to] {
			if a == b {
				continue
			}
			if p.fail[[2]string{a, b}] {
				return routing.Leg{}, fmt.Errorf("%s -> %s: %w", a, b, routing.ErrNoRoute)
			}
			if h, ok := p.hours[[2]string{a, b}]; ok {
				hours = h
			}
		}
	}
	return routing.Leg{DurationSeconds: hours * 3600, Path: orb.LineString{from, to}}, nil
}

// RunScenario plans the scenario request and checks the expectations.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	bus := eventbus.NewWithBuffer(64)
	defer bus.Close()
	ch := bus.Subscribe()

	cfg := schedule.Config{DeadlineSeconds: sc.DeadlineSeconds}
	p, err := planner.New(NewTableProvider(sc.Request, sc.Travel), 4, cfg, sink, bus, logger.NopLogger{})
	if err != nil {
		t.Fatalf("planner: %v", err)
	}

	runs := max(sc.Repeat, 1)
	var first map[string][]string
	for i := 0; i < runs; i++ {
		res, err := p.Plan(context.Background(), sc.Request)
		failed := drainFailures(ch)
		if failed != sc.Expected.FailedEdges {
			t.Errorf("scenario %s expected %d failed edges, got %d", sc.Name, sc.Expected.FailedEdges, failed)
		}
		if sc.Expected.Status == string(events.PlanInfeasible) {
			if !errors.Is(err, schedule.ErrInfeasible) {
				t.Fatalf("scenario %s expected infeasibility, got %v", sc.Name, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("scenario %s: %v", sc.Name, err)
		}
		checkResult(t, sc, res)
		got := assignment(res.Routes)
		if first == nil {
			first = got
		} else if !equalAssignment(first, got) {
			t.Fatalf("scenario %s run %d returned %v, first run returned %v", sc.Name, i, got, first)
		}
	}

	if counted := planCount(t, reg, sc.Expected.Status); int(counted) != runs {
		t.Errorf("scenario %s expected %d %s plans recorded, got %v", sc.Name, runs, sc.Expected.Status, counted)
	}
}

func checkResult(t *testing.T, sc *Scenario, res *planner.Result) {
	t.Helper()
	const eps = 1e-6
	if d := res.TotalTime - sc.Expected.TotalTime; d > eps || d < -eps {
		t.Errorf("scenario %s expected total %.4f h, got %.4f", sc.Name, sc.Expected.TotalTime, res.TotalTime)
	}
	if res.Exhaustive != sc.Expected.Exhaustive {
		t.Errorf("scenario %s expected exhaustive=%t", sc.Name, sc.Expected.Exhaustive)
	}
	if sc.Expected.Assignment != nil && !equalAssignment(sc.Expected.Assignment, assignment(res.Routes)) {
		t.Errorf("scenario %s expected assignment %v, got %v", sc.Name, sc.Expected.Assignment, assignment(res.Routes))
	}
	for _, r := range res.Routes {
		if want, ok := sc.Expected.Trips[r.VehicleID]; ok && want != r.Stats.Trips {
			t.Errorf("scenario %s vehicle %s expected %d trips, got %d", sc.Name, r.VehicleID, want, r.Stats.Trips)
		}
	}
}

func drainFailures(ch <-chan eventbus.Event) int {
	n := 0
	for {
		select {
		case ev := <-ch:
			switch ev.(type) {
			case events.MatrixEvent:
				n++
			case events.PlanEvent:
				return n
			}
		default:
			return n
		}
	}
}

func assignment(routes []model.Route) map[string][]string {
	out := make(map[string][]string, len(routes))
	for _, r := range routes {
		out[r.VehicleID] = r.Tasks
	}
	return out
}

func equalAssignment(a, b map[string][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if !slices.Equal(v, b[k]) {
			return false
		}
	}
	return true
}

// planCount sums plans_total samples with the given status.
func planCount(t *testing.T, reg *prometheus.Registry, status string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	total := 0.0
	for _, mf := range mfs {
		if mf.GetName() != "plans_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "status" && l.GetValue() == status {
					total += m.GetCounter().GetValue()
				}
			}
		}
	}
	return total
}
