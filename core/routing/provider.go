package routing

import (
	"context"
	"errors"

	"github.com/paulmach/orb"
)

// ErrNoRoute is returned by providers when no route exists between two points.
var ErrNoRoute = errors.New("no route found")

// Leg is the answer of a provider for one ordered pair of points.
type Leg struct {
	DistanceMeters  float64
	DurationSeconds float64
	Path            orb.LineString
}

// Hours returns the travel duration in hours.
func (l Leg) Hours() float64 { return l.DurationSeconds / 3600 }

// Provider computes driving routes between two points.
type Provider interface {
	Route(ctx context.Context, from, to orb.Point) (Leg, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, from, to orb.Point) (Leg, error)

// Route calls f.
func (f ProviderFunc) Route(ctx context.Context, from, to orb.Point) (Leg, error) {
	return f(ctx, from, to)
}
