package routing

import (
	"errors"
	"testing"

	"github.com/kilianp07/powerfleet/core/model"
)

func loc(id string, lat, lng float64) model.Location {
	return model.Location{ID: id, Lat: lat, Lng: lng}
}

func TestRegistryOrderAndLookup(t *testing.T) {
	reg, err := NewRegistry(
		[]model.Depot{{Location: loc("D1", 30.1, 120.1)}, {Location: loc("D2", 30.2, 120.2)}},
		[]model.Task{{Location: loc("T1", 30.3, 120.3)}},
	)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if reg.Len() != 3 {
		t.Fatalf("expected 3 locations got %d", reg.Len())
	}
	if i, ok := reg.Index("T1"); !ok || i != 2 {
		t.Fatalf("expected T1 at 2 got %d %v", i, ok)
	}
	if l, ok := reg.Get("D2"); !ok || l.Lat != 30.2 {
		t.Fatalf("unexpected D2 %+v", l)
	}
	if _, ok := reg.Get("X"); ok {
		t.Fatal("unknown id found")
	}
	if got := reg.DepotIDs(); len(got) != 2 || got[0] != "D1" {
		t.Fatalf("unexpected depots %v", got)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(
		[]model.Depot{{Location: loc("A", 0, 0)}},
		[]model.Task{{Location: loc("A", 1, 1)}},
	)
	if !errors.Is(err, ErrDuplicateLocation) {
		t.Fatalf("expected duplicate error got %v", err)
	}
}
