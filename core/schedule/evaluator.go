package schedule

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/kilianp07/powerfleet/core/model"
)

// TravelTimes is the read-only view of the travel matrix used by the
// evaluator. routing.Matrix implements it.
type TravelTimes interface {
	Travel(from, to string) float64
	Path(from, to string) orb.LineString
}

// SequencePlan is the best depot decomposition of one vehicle's ordered tasks.
// Depot is empty for an empty sequence.
type SequencePlan struct {
	Vehicle   string
	Depot     string
	Tasks     []string
	Trips     []model.Trip
	Timeline  []model.TimelineEvent
	TotalTime float64
	Energy    float64
	PeakPower float64
}

// Evaluator computes feasibility and minimum total trip time of task
// sequences. It holds no mutable state and may be shared.
type Evaluator struct {
	travel    TravelTimes
	depots    []string
	tasks     map[string]model.Task
	tolerance float64
}

// NewEvaluator returns an evaluator over the given matrix. depots lists the
// candidate depot IDs in request order.
func NewEvaluator(travel TravelTimes, depots []string, tasks []model.Task, tolerance float64) *Evaluator {
	idx := make(map[string]model.Task, len(tasks))
	for _, t := range tasks {
		idx[t.ID] = t
	}
	if tolerance < 0 {
		tolerance = 0
	}
	return &Evaluator{travel: travel, depots: append([]string(nil), depots...), tasks: idx, tolerance: tolerance}
}

// tripSpan is one round trip serving seq[first..last].
type tripSpan struct {
	first, last  int
	depart, ret  float64
	energy, peak float64
}

// decomposition is the best split of a sequence suffix into trips.
type decomposition struct {
	total  float64
	energy float64
	peak   float64
	trips  []tripSpan
}

// sequence is the per-depot evaluation input.
type sequence struct {
	vehicle model.Vehicle
	depot   string
	tasks   []model.Task
}

// Evaluate returns the minimum total time decomposition of seq for v. Only
// decompositions strictly shorter than budget are reported; pass math.Inf(1)
// for no bound. The boolean is false when seq is infeasible for every
// candidate depot or cannot beat budget.
func (e *Evaluator) Evaluate(v model.Vehicle, seq []string, budget float64) (SequencePlan, bool) {
	if len(seq) == 0 {
		return SequencePlan{Vehicle: v.ID, Tasks: []string{}}, true
	}
	tasks := make([]model.Task, len(seq))
	for i, id := range seq {
		t, ok := e.tasks[id]
		if !ok {
			return SequencePlan{}, false
		}
		tasks[i] = t
	}

	depots := e.depots
	if v.Depot != "" {
		depots = []string{v.Depot}
	}
	var (
		best      decomposition
		bestDepot string
		found     bool
	)
	limit := budget
	for _, d := range depots {
		s := sequence{vehicle: v, depot: d, tasks: tasks}
		dec, ok := e.split(s, 0, 0, limit)
		if !ok {
			continue
		}
		if !found || dec.total < best.total {
			best, bestDepot, found = dec, d, true
			limit = dec.total
		}
	}
	if !found {
		return SequencePlan{}, false
	}
	return e.plan(v, bestDepot, seq, tasks, best), true
}

// split finds the best decomposition of s.tasks[pos:] with the depot
// available from avail. Only results with a total strictly below budget are
// returned.
func (e *Evaluator) split(s sequence, pos int, avail, budget float64) (decomposition, bool) {
	if pos >= len(s.tasks) {
		return decomposition{}, budget > 0
	}

	first := s.tasks[pos]
	out := e.travel.Travel(s.depot, first.ID)
	depart := math.Max(avail, math.Max(0, first.Start-out))
	if depart+out-first.Start > e.tolerance {
		return decomposition{}, false
	}

	var (
		best  decomposition
		found bool
	)
	limit := budget
	end := first.End()
	energy := first.Energy()
	peak := first.Power
	for j := pos; j < len(s.tasks); j++ {
		if j > pos {
			prev, next := s.tasks[j-1], s.tasks[j]
			arrive := end + e.travel.Travel(prev.ID, next.ID)
			if arrive-next.Start > e.tolerance {
				// Every longer trip contains this late arrival.
				break
			}
			end = next.End()
			energy += next.Energy()
			peak = math.Max(peak, next.Power)
		}
		if peak > s.vehicle.Power+e.tolerance || energy > s.vehicle.Energy+e.tolerance {
			break
		}

		ret := end + e.travel.Travel(s.tasks[j].ID, s.depot)
		dur := ret - depart
		if dur >= limit {
			continue
		}
		rest, ok := e.split(s, j+1, ret, limit-dur)
		if !ok {
			continue
		}
		total := dur + rest.total
		if total >= limit {
			continue
		}
		trips := make([]tripSpan, 0, len(rest.trips)+1)
		trips = append(trips, tripSpan{first: pos, last: j, depart: depart, ret: ret, energy: energy, peak: peak})
		trips = append(trips, rest.trips...)
		best = decomposition{
			total:  total,
			energy: energy + rest.energy,
			peak:   math.Max(peak, rest.peak),
			trips:  trips,
		}
		found = true
		limit = total
	}
	return best, found
}

// plan materialises the trips and timeline of a decomposition.
func (e *Evaluator) plan(v model.Vehicle, depot string, seq []string, tasks []model.Task, dec decomposition) SequencePlan {
	p := SequencePlan{
		Vehicle:   v.ID,
		Depot:     depot,
		Tasks:     append([]string(nil), seq...),
		TotalTime: dec.total,
		Energy:    dec.energy,
		PeakPower: dec.peak,
	}
	for n, span := range dec.trips {
		if n > 0 {
			prevRet := dec.trips[n-1].ret
			if span.depart-prevRet > e.tolerance {
				p.Timeline = append(p.Timeline, model.TimelineEvent{
					Type: model.EventIdleDepot, At: depot, Start: prevRet, End: span.depart,
				})
			}
		}
		p.Trips = append(p.Trips, model.Trip{
			Depot:     depot,
			Tasks:     append([]string(nil), seq[span.first:span.last+1]...),
			Depart:    span.depart,
			Return:    span.ret,
			Energy:    span.energy,
			PeakPower: span.peak,
		})
		p.Timeline = append(p.Timeline, e.tripEvents(depot, tasks[span.first:span.last+1], span.depart)...)
	}
	return p
}

// tripEvents lists the travel, idle and work events of one trip.
func (e *Evaluator) tripEvents(depot string, tasks []model.Task, depart float64) []model.TimelineEvent {
	events := make([]model.TimelineEvent, 0, 3*len(tasks)+1)
	from, now := depot, depart
	for _, t := range tasks {
		arrive := now + e.travel.Travel(from, t.ID)
		events = append(events, model.TimelineEvent{
			Type: model.EventTravel, From: from, To: t.ID, Start: now, End: arrive,
			Path: e.travel.Path(from, t.ID),
		})
		if arrive < t.Start-e.tolerance {
			events = append(events, model.TimelineEvent{
				Type: model.EventIdleTask, At: t.ID, Start: arrive, End: t.Start,
			})
		}
		events = append(events, model.TimelineEvent{
			Type: model.EventWork, Task: t.ID, Start: t.Start, End: t.End(),
		})
		from, now = t.ID, t.End()
	}
	events = append(events, model.TimelineEvent{
		Type: model.EventTravel, From: from, To: depot, Start: now, End: now + e.travel.Travel(from, depot),
		Path: e.travel.Path(from, depot),
	})
	return events
}
