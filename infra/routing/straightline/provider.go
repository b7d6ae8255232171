// Package straightline estimates travel as the great-circle distance driven at
// a constant speed. It needs no network access.
package straightline

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/kilianp07/powerfleet/core/factory"
	"github.com/kilianp07/powerfleet/core/routing"
)

// Config holds the provider settings.
type Config struct {
	SpeedKmh float64 `json:"speed_kmh"`
}

// Provider implements routing.Provider.
type Provider struct {
	speedKmh float64
}

// New returns a provider driving at cfg.SpeedKmh, routing.DefaultSpeedKmh when unset.
func New(cfg Config) (*Provider, error) {
	if cfg.SpeedKmh == 0 {
		cfg.SpeedKmh = routing.DefaultSpeedKmh
	}
	if cfg.SpeedKmh < 0 {
		return nil, fmt.Errorf("straightline: speed_kmh must be positive")
	}
	return &Provider{speedKmh: cfg.SpeedKmh}, nil
}

// Route returns the straight segment between from and to.
func (p *Provider) Route(ctx context.Context, from, to orb.Point) (routing.Leg, error) {
	if err := ctx.Err(); err != nil {
		return routing.Leg{}, err
	}
	return routing.Leg{
		DistanceMeters:  routing.GreatCircleKm(from, to) * 1000,
		DurationSeconds: routing.EstimateHours(from, to, p.speedKmh) * 3600,
		Path:            orb.LineString{from, to},
	}, nil
}

func init() {
	_ = routing.RegisterProvider("straightline", func(conf map[string]any) (routing.Provider, error) {
		var cfg Config
		if err := factory.Decode(conf, &cfg); err != nil {
			return nil, err
		}
		return New(cfg)
	})
}
