package model

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Location is a named geographic point. Depots and tasks share the same ID
// space because the travel matrix is keyed by location ID.
type Location struct {
	ID  string  `json:"id" yaml:"id"`
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Point returns the location as an orb point ([lng, lat]).
func (l Location) Point() orb.Point { return orb.Point{l.Lng, l.Lat} }

func (l Location) validate(kind string) error {
	if l.ID == "" {
		return fmt.Errorf("%s: id is required", kind)
	}
	if math.IsNaN(l.Lat) || l.Lat < -90 || l.Lat > 90 {
		return fmt.Errorf("%s %s: latitude %v out of range", kind, l.ID, l.Lat)
	}
	if math.IsNaN(l.Lng) || l.Lng < -180 || l.Lng > 180 {
		return fmt.Errorf("%s %s: longitude %v out of range", kind, l.ID, l.Lng)
	}
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Depot is the place a vehicle leaves from and returns to between trips.
type Depot struct {
	Location `yaml:",inline"`
}

// Task is an outage-response job. Service must start exactly at Start (hours
// from the plan origin) and lasts Duration hours at a constant Power (kW).
type Task struct {
	Location `yaml:",inline"`
	Start    float64 `json:"start" yaml:"start"`
	Duration float64 `json:"duration" yaml:"duration"`
	Power    float64 `json:"power" yaml:"power"`
}

// End returns the due time r_end.
func (t Task) End() float64 { return t.Start + t.Duration }

// Energy returns the energy drawn by the task in kWh.
func (t Task) Energy() float64 { return t.Power * t.Duration }

// Validate checks the task definition.
func (t Task) Validate() error {
	if err := t.Location.validate("task"); err != nil {
		return err
	}
	switch {
	case !finite(t.Start) || t.Start < 0:
		return fmt.Errorf("task %s: start must be finite and non-negative", t.ID)
	case !finite(t.Duration) || t.Duration <= 0:
		return fmt.Errorf("task %s: duration must be finite and positive", t.ID)
	case !finite(t.Power) || t.Power < 0:
		return fmt.Errorf("task %s: power must be finite and non-negative", t.ID)
	}
	return nil
}

// Vehicle is a mobile power-support unit. Power is the maximum instantaneous
// rating in kW and Energy the budget in kWh available for one trip. Depot
// optionally pins the vehicle to a single depot; when empty any depot may be
// used.
type Vehicle struct {
	ID     string  `json:"id" yaml:"id"`
	Power  float64 `json:"power" yaml:"power"`
	Energy float64 `json:"energy" yaml:"energy"`
	Depot  string  `json:"depot,omitempty" yaml:"depot,omitempty"`
}

// Validate checks that the vehicle configuration is sound.
func (v Vehicle) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("vehicle: id is required")
	}
	if !finite(v.Power) || v.Power <= 0 {
		return fmt.Errorf("vehicle %s: power must be finite and positive", v.ID)
	}
	if !finite(v.Energy) || v.Energy <= 0 {
		return fmt.Errorf("vehicle %s: energy must be finite and positive", v.ID)
	}
	return nil
}

// CanServe reports whether the task alone fits within the vehicle's power and
// energy limits.
func (v Vehicle) CanServe(t Task, tolerance float64) bool {
	return t.Power <= v.Power+tolerance && t.Energy() <= v.Energy+tolerance
}
