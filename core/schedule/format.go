package schedule

import (
	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/powerfleet/core/model"
)

// Format converts the plans of a solution into routes, one per vehicle in
// input order. It does not modify sol.
func Format(sol Solution) []model.Route {
	routes := make([]model.Route, 0, len(sol.Plans))
	for _, p := range sol.Plans {
		routes = append(routes, FormatPlan(p))
	}
	return routes
}

// FormatPlan converts a single sequence plan into a route.
func FormatPlan(p SequencePlan) model.Route {
	r := model.Route{
		VehicleID: p.Vehicle,
		Depot:     p.Depot,
		Tasks:     append([]string{}, p.Tasks...),
		Trips:     append([]model.Trip{}, p.Trips...),
		Timeline:  append([]model.TimelineEvent{}, p.Timeline...),
		Path:      orb.LineString{},
	}
	for _, ev := range p.Timeline {
		if ev.Type == model.EventTravel {
			r.Path = append(r.Path, ev.Path...)
		}
	}

	durations := make([]float64, len(p.Trips))
	energies := make([]float64, len(p.Trips))
	peaks := make([]float64, len(p.Trips))
	for i, t := range p.Trips {
		durations[i] = t.Duration()
		energies[i] = t.Energy
		peaks[i] = t.PeakPower
	}
	r.Stats = model.RouteStats{
		TotalTime:   floats.Sum(durations),
		TotalEnergy: floats.Sum(energies),
		Trips:       len(p.Trips),
	}
	if len(peaks) > 0 {
		r.Stats.PeakPower = floats.Max(peaks)
	}
	return r
}
