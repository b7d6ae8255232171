package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/powerfleet/core/metrics"
	"github.com/kilianp07/powerfleet/core/schedule"
	"github.com/kilianp07/powerfleet/infra/mqtt"
)

// EnvPrefix marks environment variables that override file settings.
// PF_SEARCH__DEADLINE_SECONDS=3 sets search.deadline_seconds.
const EnvPrefix = "PF_"

type Config struct {
	Server  ServerConfig    `json:"server"`
	Search  schedule.Config `json:"search"`
	Routing RoutingConfig   `json:"routing"`
	Metrics metrics.Config  `json:"metrics"`
	MQTT    mqtt.Config     `json:"mqtt"`
	PlanLog PlanLogConfig   `json:"plan_log"`
	Sentry  SentryConfig    `json:"sentry"`
}

// Load reads a YAML or JSON file, applies environment overrides, fills
// defaults and validates every section.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied, used when no
// file is given.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Server.SetDefaults()
	c.Search.SetDefaults()
	c.Routing.SetDefaults()
	c.Metrics.SetDefaults()
	c.MQTT.SetDefaults()
	c.PlanLog.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"server", c.Server.Validate},
		{"search", c.Search.Validate},
		{"routing", c.Routing.Validate},
		{"mqtt", c.MQTT.Validate},
		{"plan_log", c.PlanLog.Validate},
		{"sentry", c.Sentry.Validate},
	}
	for _, ch := range checks {
		if err := ch.fn(); err != nil {
			return fmt.Errorf("%s: %w", ch.name, err)
		}
	}
	return nil
}
