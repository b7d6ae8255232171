package mqtt

import (
	"context"
	"fmt"
	"sync"

	"github.com/kilianp07/powerfleet/core/events"
	"github.com/kilianp07/powerfleet/core/logger"
	"github.com/kilianp07/powerfleet/core/model"
	coremqtt "github.com/kilianp07/powerfleet/core/mqtt"
	"github.com/kilianp07/powerfleet/internal/eventbus"
)

// StartRoutePublisher publishes every route of solved plans seen on the bus
// until ctx is done or the bus is closed.
func StartRoutePublisher(ctx context.Context, bus eventbus.EventBus, pub coremqtt.RoutePublisher, log logger.Logger) {
	if bus == nil || pub == nil {
		return
	}
	log = logger.OrNop(log)
	ch := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				pe, isPlan := ev.(events.PlanEvent)
				if !isPlan || pe.Status != events.PlanSolved {
					continue
				}
				for _, r := range pe.Routes {
					if err := pub.PublishRoute(pe.PlanID, r); err != nil {
						log.Errorf("publish route %s/%s: %v", pe.PlanID, r.VehicleID, err)
					}
				}
			}
		}
	}()
}

// MockPublisher records published routes, used in tests.
type MockPublisher struct {
	Routes  map[string]model.Route
	Plans   map[string]string
	FailIDs map[string]bool
	mu      sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		Routes:  make(map[string]model.Route),
		Plans:   make(map[string]string),
		FailIDs: make(map[string]bool),
	}
}

// PublishRoute records the route or fails for vehicles listed in FailIDs.
func (m *MockPublisher) PublishRoute(planID string, route model.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailIDs[route.VehicleID] {
		return fmt.Errorf("publish failed")
	}
	m.Routes[route.VehicleID] = route
	m.Plans[route.VehicleID] = planID
	return nil
}

// Count returns the number of vehicles with a published route.
func (m *MockPublisher) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Routes)
}
