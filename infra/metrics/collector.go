package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/powerfleet/core/events"
	coremetrics "github.com/kilianp07/powerfleet/core/metrics"
	"github.com/kilianp07/powerfleet/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for events.
// It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.MatrixEvent:
					if r, ok := sink.(coremetrics.EdgeFailureRecorder); ok {
						errStr := ""
						if e.Err != nil {
							errStr = e.Err.Error()
						}
						_ = r.RecordEdgeFailure(coremetrics.EdgeFailure{
							From:  e.From,
							To:    e.To,
							Error: errStr,
							Time:  time.Now(),
						})
					}
				case events.PlanEvent:
					if e.Status != events.PlanSolved {
						continue
					}
					if r, ok := sink.(coremetrics.RouteRecorder); ok {
						_ = r.RecordRoutes(RouteResults(e))
					}
				}
			}
		}
	}()
}

// RouteResults converts the routes of a solved plan event into metric records.
func RouteResults(e events.PlanEvent) []coremetrics.RouteResult {
	out := make([]coremetrics.RouteResult, 0, len(e.Routes))
	for _, r := range e.Routes {
		out = append(out, coremetrics.RouteResult{
			PlanID:      e.PlanID,
			VehicleID:   r.VehicleID,
			Depot:       r.Depot,
			Tasks:       len(r.Tasks),
			Trips:       r.Stats.Trips,
			TotalTime:   r.Stats.TotalTime,
			TotalEnergy: r.Stats.TotalEnergy,
			PeakPower:   r.Stats.PeakPower,
			Time:        e.Time,
		})
	}
	return out
}
