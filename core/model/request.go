package model

import (
	"errors"
	"fmt"
	"strings"
)

// Request is the input of one scheduling run.
type Request struct {
	Depots   []Depot   `json:"depots" yaml:"depots"`
	Tasks    []Task    `json:"tasks" yaml:"tasks"`
	Vehicles []Vehicle `json:"vehicles" yaml:"vehicles"`
}

// ValidationError lists every problem found in a Request.
type ValidationError struct {
	Issues []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		msgs[i] = is.Error()
	}
	return "invalid request: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the individual issues to errors.Is and errors.As.
func (e *ValidationError) Unwrap() []error { return e.Issues }

// ErrMissingInput is reported when depots, tasks or vehicles are absent.
var ErrMissingInput = errors.New("missing input")

// Validate checks the request before any routing or search happens. It returns
// nil or a *ValidationError.
func (r Request) Validate() error {
	var issues []error
	if len(r.Depots) == 0 {
		issues = append(issues, fmt.Errorf("depots: %w", ErrMissingInput))
	}
	if len(r.Tasks) == 0 {
		issues = append(issues, fmt.Errorf("tasks: %w", ErrMissingInput))
	}
	if len(r.Vehicles) == 0 {
		issues = append(issues, fmt.Errorf("vehicles: %w", ErrMissingInput))
	}

	locations := make(map[string]bool, len(r.Depots)+len(r.Tasks))
	depots := make(map[string]bool, len(r.Depots))
	for _, d := range r.Depots {
		if err := d.validate("depot"); err != nil {
			issues = append(issues, err)
			continue
		}
		if locations[d.ID] {
			issues = append(issues, fmt.Errorf("depot %s: duplicate location id", d.ID))
		}
		locations[d.ID] = true
		depots[d.ID] = true
	}
	for _, t := range r.Tasks {
		if err := t.Validate(); err != nil {
			issues = append(issues, err)
			continue
		}
		if locations[t.ID] {
			issues = append(issues, fmt.Errorf("task %s: duplicate location id", t.ID))
		}
		locations[t.ID] = true
	}
	vehicles := make(map[string]bool, len(r.Vehicles))
	for _, v := range r.Vehicles {
		if err := v.Validate(); err != nil {
			issues = append(issues, err)
			continue
		}
		if vehicles[v.ID] {
			issues = append(issues, fmt.Errorf("vehicle %s: duplicate id", v.ID))
		}
		vehicles[v.ID] = true
		if v.Depot != "" && !depots[v.Depot] {
			issues = append(issues, fmt.Errorf("vehicle %s: unknown depot %s", v.ID, v.Depot))
		}
	}
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: issues}
}
