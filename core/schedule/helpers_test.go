package schedule

import (
	"github.com/paulmach/orb"

	"github.com/kilianp07/powerfleet/core/model"
)

// travelTable is a fixed travel matrix. Pairs missing from edges use def.
type travelTable struct {
	def   float64
	edges map[[2]string]float64
}

func uniform(h float64) travelTable { return travelTable{def: h} }

func (tt travelTable) with(from, to string, h float64) travelTable {
	edges := make(map[[2]string]float64, len(tt.edges)+1)
	for k, v := range tt.edges {
		edges[k] = v
	}
	edges[[2]string{from, to}] = h
	return travelTable{def: tt.def, edges: edges}
}

func (tt travelTable) Travel(from, to string) float64 {
	if from == to {
		return 0
	}
	if h, ok := tt.edges[[2]string{from, to}]; ok {
		return h
	}
	return tt.def
}

func (tt travelTable) Path(from, to string) orb.LineString { return nil }

func task(id string, start, duration, power float64) model.Task {
	return model.Task{Location: model.Location{ID: id}, Start: start, Duration: duration, Power: power}
}

func vehicle(id string, power, energy float64) model.Vehicle {
	return model.Vehicle{ID: id, Power: power, Energy: energy}
}

func eventsOfType(tl []model.TimelineEvent, typ model.EventType) []model.TimelineEvent {
	var out []model.TimelineEvent
	for _, ev := range tl {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}
