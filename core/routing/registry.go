package routing

import (
	"errors"
	"fmt"

	"github.com/kilianp07/powerfleet/core/model"
)

// ErrDuplicateLocation is returned when two locations share an ID.
var ErrDuplicateLocation = errors.New("duplicate location id")

// Registry holds the depots and task sites of one request under a single ID
// space. Locations are indexed in registration order: depots first, then tasks.
type Registry struct {
	locs   []model.Location
	index  map[string]int
	depots []string
	tasks  []string
}

// NewRegistry registers depots then tasks in input order.
func NewRegistry(depots []model.Depot, tasks []model.Task) (*Registry, error) {
	r := &Registry{index: make(map[string]int, len(depots)+len(tasks))}
	for _, d := range depots {
		if err := r.add(d.Location); err != nil {
			return nil, err
		}
		r.depots = append(r.depots, d.ID)
	}
	for _, t := range tasks {
		if err := r.add(t.Location); err != nil {
			return nil, err
		}
		r.tasks = append(r.tasks, t.ID)
	}
	return r, nil
}

func (r *Registry) add(l model.Location) error {
	if _, ok := r.index[l.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateLocation, l.ID)
	}
	r.index[l.ID] = len(r.locs)
	r.locs = append(r.locs, l)
	return nil
}

// Len returns the number of registered locations.
func (r *Registry) Len() int { return len(r.locs) }

// Locations returns every location in registration order.
func (r *Registry) Locations() []model.Location {
	out := make([]model.Location, len(r.locs))
	copy(out, r.locs)
	return out
}

// Index returns the dense index of id.
func (r *Registry) Index(id string) (int, bool) {
	i, ok := r.index[id]
	return i, ok
}

// Get returns the location registered under id.
func (r *Registry) Get(id string) (model.Location, bool) {
	i, ok := r.index[id]
	if !ok {
		return model.Location{}, false
	}
	return r.locs[i], true
}

// DepotIDs returns the depot IDs in input order.
func (r *Registry) DepotIDs() []string { return append([]string(nil), r.depots...) }

// TaskIDs returns the task IDs in input order.
func (r *Registry) TaskIDs() []string { return append([]string(nil), r.tasks...) }
