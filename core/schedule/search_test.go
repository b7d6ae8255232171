package schedule

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powerfleet/core/model"
	"github.com/kilianp07/powerfleet/core/routing"
)

func solve(t *testing.T, in Input) (Solution, error) {
	t.Helper()
	return NewSearch(Config{DeadlineSeconds: 30}, nil).Solve(context.Background(), in)
}

func TestSolveSingleVehicleAtDepot(t *testing.T) {
	in := Input{
		Depots:   []string{"D"},
		Tasks:    []model.Task{task("T1", 0, 1, 10), task("T2", 2, 1, 10)},
		Vehicles: []model.Vehicle{vehicle("V1", 20, 100)},
		Travel:   uniform(0),
	}
	sol, err := solve(t, in)
	require.NoError(t, err)
	assert.True(t, sol.Exhaustive)
	assert.InDelta(t, 2.0, sol.TotalTime, 1e-9)
	require.Len(t, sol.Plans, 1)
	assert.Equal(t, []string{"T1", "T2"}, sol.Plans[0].Tasks)
	assert.Equal(t, "D", sol.Plans[0].Depot)
}

func TestSolvePowerInfeasible(t *testing.T) {
	in := Input{
		Depots:   []string{"D"},
		Tasks:    []model.Task{task("T1", 1, 1, 50)},
		Vehicles: []model.Vehicle{vehicle("V1", 20, 1000)},
		Travel:   uniform(0.1),
	}
	_, err := solve(t, in)
	require.ErrorIs(t, err, ErrInfeasible)
	assert.Contains(t, err.Error(), "no assignment satisfies")
}

func TestSolveTaskGoesToCapableVehicle(t *testing.T) {
	in := Input{
		Depots:   []string{"D"},
		Tasks:    []model.Task{task("T1", 1, 1, 50), task("T2", 1, 1, 10)},
		Vehicles: []model.Vehicle{vehicle("small", 20, 100), vehicle("big", 60, 100)},
		Travel:   uniform(0.5),
	}
	sol, err := solve(t, in)
	require.NoError(t, err)
	assert.Equal(t, []string{"T2"}, sol.Plans[0].Tasks)
	assert.Equal(t, []string{"T1"}, sol.Plans[1].Tasks)
	assert.InDelta(t, 4.0, sol.TotalTime, 1e-9)
}

type failingEdge struct{ from, to orb.Point }

func matrixWithFailure(t *testing.T, depots []model.Depot, tasks []model.Task, fail failingEdge) *routing.Matrix {
	t.Helper()
	reg, err := routing.NewRegistry(depots, tasks)
	require.NoError(t, err)
	p := routing.ProviderFunc(func(_ context.Context, from, to orb.Point) (routing.Leg, error) {
		if from == fail.from && to == fail.to {
			return routing.Leg{}, routing.ErrNoRoute
		}
		return routing.Leg{DurationSeconds: 1800, Path: orb.LineString{from, to}}, nil
	})
	m, stats := routing.NewMatrixBuilder(p, 3, nil, nil).Build(context.Background(), reg)
	require.Equal(t, 1, stats.Failed)
	return m
}

func TestSolveAvoidsFailedEdge(t *testing.T) {
	depots := []model.Depot{{Location: model.Location{ID: "D", Lat: 30, Lng: 120}}}
	t1 := model.Task{Location: model.Location{ID: "T1", Lat: 30.1, Lng: 120}, Start: 1, Duration: 1, Power: 10}
	t2 := model.Task{Location: model.Location{ID: "T2", Lat: 30.2, Lng: 120}, Start: 3, Duration: 1, Power: 10}
	m := matrixWithFailure(t, depots, []model.Task{t1, t2}, failingEdge{from: t1.Point(), to: t2.Point()})
	assert.Equal(t, routing.SentinelHours, m.Travel("T1", "T2"))

	sol, err := solve(t, Input{
		Depots:   []string{"D"},
		Tasks:    []model.Task{t1, t2},
		Vehicles: []model.Vehicle{vehicle("V1", 20, 100)},
		Travel:   m,
	})
	require.NoError(t, err)
	assert.InDelta(t, 4.0, sol.TotalTime, 1e-9)
	for _, ev := range eventsOfType(sol.Plans[0].Timeline, model.EventTravel) {
		assert.False(t, ev.From == "T1" && ev.To == "T2", "search used the failed edge")
	}
}

func TestSolveInfeasibleWhenOnlyEdgeFails(t *testing.T) {
	depots := []model.Depot{{Location: model.Location{ID: "D", Lat: 30, Lng: 120}}}
	t1 := model.Task{Location: model.Location{ID: "T1", Lat: 30.1, Lng: 120}, Start: 1, Duration: 1, Power: 10}
	m := matrixWithFailure(t, depots, []model.Task{t1}, failingEdge{from: depots[0].Point(), to: t1.Point()})

	_, err := solve(t, Input{
		Depots:   []string{"D"},
		Tasks:    []model.Task{t1},
		Vehicles: []model.Vehicle{vehicle("V1", 20, 100)},
		Travel:   m,
	})
	assert.ErrorIs(t, err, ErrInfeasible)
}

func TestSolveTieBreakIsDeterministic(t *testing.T) {
	in := Input{
		Depots:   []string{"D"},
		Tasks:    []model.Task{task("T1", 1, 1, 10), task("T2", 1, 1, 10)},
		Vehicles: []model.Vehicle{vehicle("V1", 20, 100), vehicle("V2", 20, 100)},
		Travel:   uniform(0.5),
	}
	first, err := solve(t, in)
	require.NoError(t, err)
	// The seed deals T1 to V1 and T2 to V2; equal totals never replace it.
	assert.Equal(t, []string{"T1"}, first.Plans[0].Tasks)
	assert.Equal(t, []string{"T2"}, first.Plans[1].Tasks)
	for i := 0; i < 5; i++ {
		again, err := solve(t, in)
		require.NoError(t, err)
		if !reflect.DeepEqual(first.Plans, again.Plans) {
			t.Fatalf("run %d returned a different assignment", i)
		}
	}
}

func TestSolveAddingVehicleNeverHurts(t *testing.T) {
	tasks := []model.Task{task("T1", 1, 1, 10), task("T2", 1.5, 1, 10), task("T3", 4, 1, 10)}
	travel := uniform(0.5).with("T1", "T3", 0.2)
	base := Input{
		Depots:   []string{"D"},
		Tasks:    tasks,
		Vehicles: []model.Vehicle{vehicle("V1", 20, 30), vehicle("V2", 20, 30)},
		Travel:   travel,
	}
	before, err := solve(t, base)
	require.NoError(t, err)

	more := base
	more.Vehicles = append(append([]model.Vehicle(nil), base.Vehicles...), vehicle("V3", 20, 30))
	after, err := solve(t, more)
	require.NoError(t, err)
	assert.LessOrEqual(t, after.TotalTime, before.TotalTime+1e-9)
	assert.Len(t, after.Plans, 3)
}

func TestSolveDeadlineReturnsBestFound(t *testing.T) {
	in := Input{
		Depots:   []string{"D"},
		Tasks:    []model.Task{task("T1", 1, 1, 10), task("T2", 3, 1, 10), task("T3", 5, 1, 10)},
		Vehicles: []model.Vehicle{vehicle("V1", 20, 100), vehicle("V2", 20, 100)},
		Travel:   uniform(0.5),
	}
	s := NewSearch(Config{DeadlineSeconds: 1}, nil)
	clock := time.Unix(0, 0)
	s.now = func() time.Time {
		clock = clock.Add(400 * time.Millisecond)
		return clock
	}
	sol, err := s.Solve(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, sol.Exhaustive)
	assert.True(t, sol.Stats.SeedFeasible)
	assert.Len(t, sol.Plans, 2)
}

func TestSolveCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	feasible := Input{
		Depots:   []string{"D"},
		Tasks:    []model.Task{task("T1", 1, 1, 10)},
		Vehicles: []model.Vehicle{vehicle("V1", 20, 100)},
		Travel:   uniform(0.5),
	}
	sol, err := NewSearch(Config{}, nil).Solve(ctx, feasible)
	require.NoError(t, err)
	assert.False(t, sol.Exhaustive)
	assert.Equal(t, 0, sol.Stats.Assignments)

	// The seed puts T1 on V1, which cannot serve it.
	infeasibleSeed := feasible
	infeasibleSeed.Vehicles = []model.Vehicle{vehicle("V1", 5, 100), vehicle("V2", 20, 100)}
	_, err = NewSearch(Config{}, nil).Solve(ctx, infeasibleSeed)
	assert.ErrorIs(t, err, ErrInfeasible)
}

func TestSolveStatsAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	ResetMetrics(reg)
	t.Cleanup(func() { ResetMetrics(nil) })

	// The seed splits T1 and T2 across vehicles for 4 h; chaining both on V1
	// through the zero-hour A->B leg costs 3 h.
	in := Input{
		Depots: []string{"D"},
		Tasks: []model.Task{
			{Location: model.Location{ID: "A"}, Start: 1, Duration: 1, Power: 10},
			{Location: model.Location{ID: "B"}, Start: 2, Duration: 1, Power: 10},
		},
		Vehicles: []model.Vehicle{vehicle("V1", 20, 100), vehicle("V2", 20, 100)},
		Travel:   uniform(0.5).with("A", "B", 0),
	}
	sol, err := solve(t, in)
	require.NoError(t, err)
	assert.True(t, sol.Stats.SeedFeasible)
	assert.InDelta(t, 3.0, sol.TotalTime, 1e-9)
	assert.Positive(t, sol.Stats.Assignments)
	assert.LessOrEqual(t, sol.Stats.Assignments, 4)
	assert.Positive(t, sol.Stats.Combinations)
	assert.Positive(t, sol.Stats.Evaluations)
	assert.Positive(t, sol.Stats.Pruned)
	assert.Equal(t, float64(sol.Stats.Evaluations), testutil.ToFloat64(evaluationsTotal))
	assert.Equal(t, float64(sol.Stats.Pruned), testutil.ToFloat64(prunedTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(timeoutsTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(searchDuration))
}

func TestSolveOptimalSeedPrunesEveryCombination(t *testing.T) {
	in := Input{
		Depots:   []string{"D"},
		Tasks:    []model.Task{task("T1", 1, 1, 10), task("T2", 3, 1, 10), task("T3", 1, 1, 50)},
		Vehicles: []model.Vehicle{vehicle("V1", 20, 100), vehicle("V2", 60, 100)},
		Travel:   uniform(0.5),
	}
	sol, err := solve(t, in)
	require.NoError(t, err)
	assert.True(t, sol.Stats.SeedFeasible)
	assert.Equal(t, 0, sol.Stats.Combinations)
	assert.Positive(t, sol.Stats.Pruned)
}

func TestSeedStopsAtFirstInfeasibleVehicle(t *testing.T) {
	tasks := []model.Task{task("T1", 1, 1, 10), task("T2", 3, 1, 10)}
	in := Input{
		Depots:   []string{"D"},
		Tasks:    tasks,
		Vehicles: []model.Vehicle{vehicle("V1", 5, 100), vehicle("V2", 20, 100)},
		Travel:   uniform(0.5),
	}
	eval := NewEvaluator(in.Travel, in.Depots, tasks, DefaultToleranceHours)
	_, _, evaluations, ok := seed(eval, in)
	if ok {
		t.Fatalf("expected infeasible seed")
	}
	if evaluations != 1 {
		t.Fatalf("expected 1 evaluation, got %d", evaluations)
	}

	in.Vehicles[0] = vehicle("V1", 20, 100)
	_, total, evaluations, ok := seed(eval, in)
	if !ok || evaluations != 2 {
		t.Fatalf("expected feasible seed with 2 evaluations, got ok=%t evaluations=%d", ok, evaluations)
	}
	if math.Abs(total-4) > 1e-9 {
		t.Fatalf("expected seed total 4, got %v", total)
	}
}

// Brute force without pruning must agree with the search on small instances.
func TestSolveMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 25; round++ {
		in := randomInput(rng)
		want, feasible := bruteForce(in)
		sol, err := solve(t, in)
		if !feasible {
			require.ErrorIs(t, err, ErrInfeasible, "round %d", round)
			continue
		}
		require.NoError(t, err, "round %d", round)
		assert.InDelta(t, want, sol.TotalTime, 1e-9, "round %d", round)
	}
}

func randomInput(rng *rand.Rand) Input {
	nt := 1 + rng.Intn(4)
	nv := 1 + rng.Intn(2)
	ids := []string{"D1", "D2"}
	in := Input{Depots: ids, Travel: travelTable{def: 0.5, edges: map[[2]string]float64{}}}
	for i := 0; i < nt; i++ {
		id := string(rune('A' + i))
		in.Tasks = append(in.Tasks, task(id, float64(rng.Intn(8))*0.5+0.5, 0.5+float64(rng.Intn(3))*0.5, float64(5+rng.Intn(20))))
		ids = append(ids, id)
	}
	tt := in.Travel.(travelTable)
	for _, a := range ids {
		for _, b := range ids {
			if a != b {
				tt.edges[[2]string{a, b}] = 0.1 + float64(rng.Intn(6))*0.1
			}
		}
	}
	for i := 0; i < nv; i++ {
		in.Vehicles = append(in.Vehicles, vehicle(string(rune('V'+i)), float64(10+rng.Intn(20)), float64(15+rng.Intn(40))))
	}
	return in
}

// bruteForce evaluates every assignment and order without bounds.
func bruteForce(in Input) (float64, bool) {
	eval := NewEvaluator(in.Travel, in.Depots, in.Tasks, DefaultToleranceHours)
	best := math.Inf(1)
	it := newAssignments(len(in.Tasks), len(in.Vehicles))
	for it.Next() {
		total := 0.0
		for v, veh := range in.Vehicles {
			var group []string
			for t, owner := range it.Assignment() {
				if owner == v {
					group = append(group, in.Tasks[t].ID)
				}
			}
			vbest := math.Inf(1)
			perms := newPermutations(group)
			for perms.Next() {
				if p, ok := eval.Evaluate(veh, perms.Sequence(), math.Inf(1)); ok && p.TotalTime < vbest {
					vbest = p.TotalTime
				}
			}
			total += vbest
		}
		if total < best {
			best = total
		}
	}
	return best, !math.IsInf(best, 1)
}

func TestSolveReportsStoppedInfeasible(t *testing.T) {
	in := Input{
		Depots:   []string{"D"},
		Tasks:    []model.Task{task("T1", 1, 1, 50)},
		Vehicles: []model.Vehicle{vehicle("V1", 20, 100)},
		Travel:   uniform(0.5),
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sol, err := NewSearch(Config{}, nil).Solve(ctx, in)
	require.True(t, errors.Is(err, ErrInfeasible))
	assert.False(t, sol.Exhaustive)
}
