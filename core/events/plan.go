package events

import (
	"time"

	"github.com/kilianp07/powerfleet/core/model"
)

// PlanStatus is the outcome of a scheduling run.
type PlanStatus string

const (
	PlanSolved     PlanStatus = "solved"
	PlanInfeasible PlanStatus = "infeasible"
	PlanFailed     PlanStatus = "failed"
)

// PlanEvent is published once per scheduling run. Routes is empty unless
// Status is PlanSolved.
type PlanEvent struct {
	PlanID     string
	Status     PlanStatus
	Routes     []model.Route
	TotalTime  float64
	Exhaustive bool
	Elapsed    time.Duration
	Time       time.Time
}
