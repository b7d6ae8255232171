package metrics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kilianp07/powerfleet/core/events"
	coremetrics "github.com/kilianp07/powerfleet/core/metrics"
	"github.com/kilianp07/powerfleet/core/model"
	"github.com/kilianp07/powerfleet/internal/eventbus"
)

type captureSink struct {
	coremetrics.NopSink
	mu     sync.Mutex
	edges  []coremetrics.EdgeFailure
	routes []coremetrics.RouteResult
}

func (c *captureSink) RecordEdgeFailure(ev coremetrics.EdgeFailure) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edges = append(c.edges, ev)
	return nil
}

func (c *captureSink) RecordRoutes(r []coremetrics.RouteResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes = append(c.routes, r...)
	return nil
}

func (c *captureSink) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.edges), len(c.routes)
}

func TestStartEventCollector(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sink := &captureSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartEventCollector(ctx, bus, sink)

	bus.Publish(events.MatrixEvent{From: "A", To: "B", Err: errors.New("timeout")})
	bus.Publish(events.PlanEvent{PlanID: "p", Status: events.PlanInfeasible})
	bus.Publish(events.PlanEvent{
		PlanID: "p2",
		Status: events.PlanSolved,
		Routes: []model.Route{{VehicleID: "V1", Tasks: []string{"T1"}, Stats: model.RouteStats{TotalEnergy: 10, Trips: 1}}},
	})

	deadline := time.After(time.Second)
	for {
		edges, routes := sink.counts()
		if edges == 1 && routes == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("collector did not record events: edges=%d routes=%d", edges, routes)
		case <-time.After(10 * time.Millisecond):
		}
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.edges[0].Error != "timeout" || sink.routes[0].PlanID != "p2" || sink.routes[0].Tasks != 1 {
		t.Fatalf("unexpected records %+v %+v", sink.edges, sink.routes)
	}
}
