package schedule

import (
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.SetDefaults()
	if c.DeadlineSeconds != DefaultDeadlineSeconds || c.ToleranceHours != DefaultToleranceHours {
		t.Fatalf("unexpected defaults %+v", c)
	}
	if c.Deadline() != 8*time.Second {
		t.Fatalf("expected 8s got %s", c.Deadline())
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{DeadlineSeconds: -1}).Validate(); err == nil {
		t.Fatal("expected error for negative deadline")
	}
	if err := (Config{DeadlineSeconds: 1, ToleranceHours: -1}).Validate(); err == nil {
		t.Fatal("expected error for negative tolerance")
	}
}
