package schedule

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/powerfleet/core/logger"
	"github.com/kilianp07/powerfleet/core/model"
)

// ErrInfeasible is returned when no assignment serves every task.
var ErrInfeasible = errors.New("no assignment satisfies all time windows and energy budgets")

// Input is one search problem. Depots lists candidate depot IDs in request
// order; Travel must cover every depot and task.
type Input struct {
	Depots   []string
	Tasks    []model.Task
	Vehicles []model.Vehicle
	Travel   TravelTimes
}

// Stats describes the work done by a search. Combinations counts the complete
// task orders that survived pruning on every vehicle; Evaluations counts the
// sequences handed to the evaluator, seed included.
type Stats struct {
	Assignments  int
	Combinations int
	Evaluations  int
	Pruned       int
	SeedFeasible bool
	Elapsed      time.Duration
}

// Solution is the best assignment found. Plans follows the vehicle input
// order and includes vehicles without tasks. Exhaustive is false when the
// search stopped before visiting every combination, in which case the
// solution is the best found rather than a proven optimum.
type Solution struct {
	Plans      []SequencePlan
	TotalTime  float64
	Exhaustive bool
	Stats      Stats
}

// Search enumerates task assignments and orders with branch and bound.
type Search struct {
	cfg Config
	log logger.Logger
	now func() time.Time
}

// NewSearch returns a search using cfg. Unset fields take their defaults.
func NewSearch(cfg Config, log logger.Logger) *Search {
	cfg.SetDefaults()
	return &Search{cfg: cfg, log: logger.OrNop(log), now: time.Now}
}

// Solve returns the assignment with the lowest total trip time, or
// ErrInfeasible. When the deadline expires or ctx is cancelled the best
// solution found so far is returned with Exhaustive unset.
func (s *Search) Solve(ctx context.Context, in Input) (Solution, error) {
	start := s.now()
	st := &searchState{
		ctx:      ctx,
		now:      s.now,
		deadline: start.Add(s.cfg.Deadline()),
		eval:     NewEvaluator(in.Travel, in.Depots, in.Tasks, s.cfg.ToleranceHours),
		vehicles: in.Vehicles,
		best:     math.Inf(1),
		plans:    make([]SequencePlan, len(in.Vehicles)),
		groups:   make([][]string, len(in.Vehicles)),
	}

	plans, total, evaluations, ok := seed(st.eval, in)
	if ok {
		st.best, st.bestPlans = total, plans
		st.stats.SeedFeasible = true
	}
	st.stats.Evaluations += evaluations
	s.log.Debugw("search started", map[string]any{
		"tasks":         len(in.Tasks),
		"vehicles":      len(in.Vehicles),
		"depots":        len(in.Depots),
		"seed_feasible": st.stats.SeedFeasible,
		"seed_total":    st.best,
	})

	st.run(in.Tasks, s.cfg.ToleranceHours)

	st.stats.Elapsed = s.now().Sub(start)
	evaluationsTotal.Add(float64(st.stats.Evaluations))
	prunedTotal.Add(float64(st.stats.Pruned))
	if st.stopped {
		timeoutsTotal.Inc()
		s.log.Warnf("search stopped after %s with %d assignments visited, returning best found", st.stats.Elapsed, st.stats.Assignments)
	}

	if st.bestPlans == nil {
		searchDuration.WithLabelValues("infeasible").Observe(st.stats.Elapsed.Seconds())
		if st.stopped {
			return Solution{Stats: st.stats}, fmt.Errorf("%w before the search deadline", ErrInfeasible)
		}
		return Solution{Exhaustive: true, Stats: st.stats}, ErrInfeasible
	}
	searchDuration.WithLabelValues("solved").Observe(st.stats.Elapsed.Seconds())
	s.log.Debugw("search finished", map[string]any{
		"total_time":   st.best,
		"exhaustive":   !st.stopped,
		"assignments":  st.stats.Assignments,
		"combinations": st.stats.Combinations,
		"evaluations":  st.stats.Evaluations,
		"pruned":       st.stats.Pruned,
	})
	return Solution{
		Plans:      st.bestPlans,
		TotalTime:  st.best,
		Exhaustive: !st.stopped,
		Stats:      st.stats,
	}, nil
}

// searchState carries one Solve call. It is not shared between goroutines.
type searchState struct {
	ctx      context.Context
	now      func() time.Time
	deadline time.Time
	eval     *Evaluator
	vehicles []model.Vehicle

	best      float64
	bestPlans []SequencePlan
	plans     []SequencePlan
	groups    [][]string
	stopped   bool
	stats     Stats
}

func (st *searchState) expired() bool {
	if st.stopped {
		return true
	}
	if st.ctx.Err() != nil || !st.now().Before(st.deadline) {
		st.stopped = true
	}
	return st.stopped
}

// run walks the assignments in odometer order. Assignments giving a task to
// a vehicle that cannot serve it alone are skipped as a block.
func (st *searchState) run(tasks []model.Task, tolerance float64) {
	serviceable := make([][]bool, len(tasks))
	for t, task := range tasks {
		serviceable[t] = make([]bool, len(st.vehicles))
		for v, veh := range st.vehicles {
			serviceable[t][v] = veh.CanServe(task, tolerance)
		}
	}

	it := newAssignments(len(tasks), len(st.vehicles))
	more := it.Next()
	for more {
		if st.expired() {
			return
		}
		st.stats.Assignments++
		asn := it.Assignment()
		if pos := firstUnserviceable(asn, serviceable); pos >= 0 {
			st.stats.Pruned++
			more = it.Skip(pos)
			continue
		}
		for v := range st.groups {
			st.groups[v] = st.groups[v][:0]
		}
		for t, v := range asn {
			st.groups[v] = append(st.groups[v], tasks[t].ID)
		}
		st.walk(0, 0)
		if st.stopped {
			return
		}
		more = it.Next()
	}
}

func firstUnserviceable(asn []int, serviceable [][]bool) int {
	for t, v := range asn {
		if !serviceable[t][v] {
			return t
		}
	}
	return -1
}

// walk tries every order of vehicle k's group given the running total of
// vehicles before k. A prefix that is infeasible or reaches the bound is
// abandoned together with every combination extending it.
func (st *searchState) walk(k int, running float64) {
	if k == len(st.vehicles) {
		st.stats.Combinations++
		if running < st.best {
			st.best = running
			st.bestPlans = append([]SequencePlan(nil), st.plans...)
		}
		return
	}
	group := st.groups[k]
	if len(group) == 0 {
		st.plans[k] = SequencePlan{Vehicle: st.vehicles[k].ID, Tasks: []string{}}
		st.walk(k+1, running)
		return
	}
	perms := newPermutations(group)
	for perms.Next() {
		if st.expired() {
			return
		}
		if running >= st.best {
			st.stats.Pruned++
			return
		}
		st.stats.Evaluations++
		plan, ok := st.eval.Evaluate(st.vehicles[k], perms.Sequence(), st.best-running)
		if !ok {
			st.stats.Pruned++
			continue
		}
		total := running + plan.TotalTime
		if total >= st.best {
			st.stats.Pruned++
			continue
		}
		st.plans[k] = plan
		st.walk(k+1, total)
	}
}
