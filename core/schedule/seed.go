package schedule

import (
	"math"
	"sort"

	"github.com/kilianp07/powerfleet/core/model"
)

// seedGroups deals tasks, ordered by ready time, round-robin over vehicles.
// Each vehicle ends up with at most ceil(T/V) tasks kept in ready-time order.
func seedGroups(tasks []model.Task, vehicles int) [][]string {
	groups := make([][]string, vehicles)
	if vehicles == 0 {
		return groups
	}
	order := make([]model.Task, len(tasks))
	copy(order, tasks)
	sort.SliceStable(order, func(i, j int) bool { return order[i].Start < order[j].Start })
	for k, t := range order {
		groups[k%vehicles] = append(groups[k%vehicles], t.ID)
	}
	return groups
}

// seed evaluates the round-robin baseline. It returns the per-vehicle plans,
// their total and the number of sequences evaluated; ok is false when a
// vehicle's sequence is infeasible, which stops the evaluation there.
func seed(eval *Evaluator, in Input) (plans []SequencePlan, total float64, evaluations int, ok bool) {
	if len(in.Vehicles) == 0 && len(in.Tasks) > 0 {
		return nil, 0, 0, false
	}
	groups := seedGroups(in.Tasks, len(in.Vehicles))
	plans = make([]SequencePlan, len(in.Vehicles))
	for k, v := range in.Vehicles {
		p, feasible := eval.Evaluate(v, groups[k], math.Inf(1))
		evaluations++
		if !feasible {
			return nil, 0, evaluations, false
		}
		plans[k] = p
		total += p.TotalTime
	}
	return plans, total, evaluations, true
}
