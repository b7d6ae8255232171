// Package mqtt defines how solved routes leave the service.
package mqtt

import (
	"errors"

	"github.com/kilianp07/powerfleet/core/model"
)

// ErrNotConnected is returned when publishing without a broker connection.
var ErrNotConnected = errors.New("mqtt client not connected")

// RoutePublisher sends the route of one vehicle to the fleet.
type RoutePublisher interface {
	PublishRoute(planID string, route model.Route) error
}
