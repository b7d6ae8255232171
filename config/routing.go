package config

import (
	"fmt"

	"github.com/kilianp07/powerfleet/core/factory"
	"github.com/kilianp07/powerfleet/core/routing"
)

// RoutingConfig selects the travel time provider and the matrix worker pool size.
type RoutingConfig struct {
	Concurrency int                  `json:"concurrency"`
	Provider    factory.ModuleConfig `json:"provider"`
}

// SetDefaults uses the offline straight line provider when none is set.
func (c *RoutingConfig) SetDefaults() {
	if c.Concurrency == 0 {
		c.Concurrency = routing.DefaultConcurrency
	}
	if c.Provider.Type == "" {
		c.Provider.Type = "straightline"
	}
}

func (c RoutingConfig) Validate() error {
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must be non-negative")
	}
	return nil
}
