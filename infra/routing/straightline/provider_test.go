package straightline

import (
	"context"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powerfleet/core/factory"
	"github.com/kilianp07/powerfleet/core/routing"
)

func TestRouteUsesConstantSpeed(t *testing.T) {
	p, err := New(Config{})
	require.NoError(t, err)
	from, to := orb.Point{0, 0}, orb.Point{0, 1}
	leg, err := p.Route(context.Background(), from, to)
	require.NoError(t, err)
	assert.InDelta(t, 111195, leg.DistanceMeters, 500)
	assert.InDelta(t, leg.DistanceMeters/1000/routing.DefaultSpeedKmh, leg.Hours(), 1e-9)
	assert.Equal(t, orb.LineString{from, to}, leg.Path)

	same, err := p.Route(context.Background(), from, from)
	require.NoError(t, err)
	assert.Zero(t, same.DurationSeconds)
}

func TestRouteCancelled(t *testing.T) {
	p, _ := New(Config{SpeedKmh: 60})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Route(ctx, orb.Point{}, orb.Point{1, 1}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestNegativeSpeed(t *testing.T) {
	if _, err := New(Config{SpeedKmh: -1}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFactoryRegistration(t *testing.T) {
	p, err := routing.NewProvider(factory.ModuleConfig{Type: "straightline", Conf: map[string]any{"speed_kmh": 60}})
	require.NoError(t, err)
	assert.Equal(t, 60.0, p.(*Provider).speedKmh)
}
