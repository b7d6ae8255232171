package routing

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// DefaultSpeedKmh is the average speed used by straight-line estimates.
const DefaultSpeedKmh = 30.0

// GreatCircleKm returns the haversine distance between two points in km.
func GreatCircleKm(a, b orb.Point) float64 {
	return geo.DistanceHaversine(a, b) / 1000
}

// EstimateHours converts the great-circle distance into hours at speedKmh.
// Non-positive speeds fall back to DefaultSpeedKmh.
func EstimateHours(a, b orb.Point, speedKmh float64) float64 {
	if speedKmh <= 0 {
		speedKmh = DefaultSpeedKmh
	}
	return GreatCircleKm(a, b) / speedKmh
}
