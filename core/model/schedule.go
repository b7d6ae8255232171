package model

import "github.com/paulmach/orb"

// EventType classifies a timeline entry.
type EventType string

const (
	EventTravel    EventType = "travel"
	EventIdleTask  EventType = "idle_task"
	EventIdleDepot EventType = "idle_depot"
	EventWork      EventType = "work"
)

// TimelineEvent is one chronological step of a vehicle schedule. Times are in
// hours from the plan origin. From/To/Path are set for travel, At for idle
// events and Task for work.
type TimelineEvent struct {
	Type  EventType      `json:"type"`
	Start float64        `json:"start"`
	End   float64        `json:"end"`
	From  string         `json:"from,omitempty"`
	To    string         `json:"to,omitempty"`
	At    string         `json:"at,omitempty"`
	Task  string         `json:"task,omitempty"`
	Path  orb.LineString `json:"path,omitempty"`
}

// Trip is a depot round trip serving a contiguous run of a vehicle's tasks.
type Trip struct {
	Depot     string   `json:"depot"`
	Tasks     []string `json:"tasks"`
	Depart    float64  `json:"depart"`
	Return    float64  `json:"return"`
	Energy    float64  `json:"energy"`
	PeakPower float64  `json:"peak_power"`
}

// Duration returns Return - Depart.
func (t Trip) Duration() float64 { return t.Return - t.Depart }

// RouteStats aggregates a vehicle route.
type RouteStats struct {
	TotalTime   float64 `json:"total_time"`
	TotalEnergy float64 `json:"total_energy"`
	PeakPower   float64 `json:"peak_power"`
	Trips       int     `json:"trips"`
}

// Route is the formatted schedule of one vehicle.
type Route struct {
	VehicleID string          `json:"vehicle_id"`
	Depot     string          `json:"depot"`
	Tasks     []string        `json:"tasks"`
	Trips     []Trip          `json:"trips"`
	Timeline  []TimelineEvent `json:"timeline"`
	Path      orb.LineString  `json:"path"`
	Stats     RouteStats      `json:"stats"`
}
