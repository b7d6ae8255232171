package metrics

import "github.com/kilianp07/powerfleet/core/factory"

// Config defines settings for metrics sinks and the Prometheus endpoint.
type Config struct {
	PrometheusEnabled bool                   `json:"prometheus_enabled"`
	PrometheusAddress string                 `json:"prometheus_address"`
	Sinks             []factory.ModuleConfig `json:"sinks"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusEnabled && c.PrometheusAddress == "" {
		c.PrometheusAddress = ":9090"
	}
}
