// Package scenarios replays scheduling scenarios described in YAML files
// against the full planner with a table-driven routing provider.
package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/powerfleet/core/model"
)

// Edge overrides the travel time between two locations.
type Edge struct {
	From  string  `yaml:"from"`
	To    string  `yaml:"to"`
	Hours float64 `yaml:"hours"`
}

// TravelDef describes the routing provider answers. Edges not listed take
// Default hours; Fail lists edges the provider cannot resolve.
type TravelDef struct {
	Default float64 `yaml:"default"`
	Edges   []Edge  `yaml:"edges,omitempty"`
	Fail    []Edge  `yaml:"fail,omitempty"`
}

type Expected struct {
	Status      string              `yaml:"status"`
	TotalTime   float64             `yaml:"total_time"`
	Exhaustive  bool                `yaml:"exhaustive"`
	Assignment  map[string][]string `yaml:"assignment,omitempty"`
	Trips       map[string]int      `yaml:"trips,omitempty"`
	FailedEdges int                 `yaml:"failed_edges"`
}

type Scenario struct {
	Name            string        `yaml:"name"`
	Description     string        `yaml:"description,omitempty"`
	Request         model.Request `yaml:"request"`
	Travel          TravelDef     `yaml:"travel"`
	DeadlineSeconds float64       `yaml:"deadline_seconds,omitempty"`
	Repeat          int           `yaml:"repeat,omitempty"`
	Expected        Expected      `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
