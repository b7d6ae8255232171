// Package events defines the planning events emitted on the event bus.
//
// Available event types:
//   - MatrixEvent: a travel edge could not be obtained from the routing provider
//   - PlanEvent: a scheduling run finished (solved or infeasible)
package events
