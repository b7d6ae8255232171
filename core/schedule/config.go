package schedule

import (
	"fmt"
	"time"
)

const (
	// DefaultDeadlineSeconds bounds the wall-clock time of one search.
	DefaultDeadlineSeconds = 8.0
	// DefaultToleranceHours is the slack allowed on time windows and limits.
	DefaultToleranceHours = 1e-5
)

// Config defines search settings.
type Config struct {
	DeadlineSeconds float64 `json:"deadline_seconds"`
	ToleranceHours  float64 `json:"tolerance_hours"`
}

// SetDefaults applies the reference values to unset fields.
func (c *Config) SetDefaults() {
	if c.DeadlineSeconds == 0 {
		c.DeadlineSeconds = DefaultDeadlineSeconds
	}
	if c.ToleranceHours == 0 {
		c.ToleranceHours = DefaultToleranceHours
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.DeadlineSeconds <= 0 {
		return fmt.Errorf("deadline_seconds must be positive")
	}
	if c.ToleranceHours < 0 {
		return fmt.Errorf("tolerance_hours must be non-negative")
	}
	return nil
}

// Deadline returns the search deadline as a duration.
func (c Config) Deadline() time.Duration {
	return time.Duration(c.DeadlineSeconds * float64(time.Second))
}
