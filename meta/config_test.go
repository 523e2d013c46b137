package meta

import (
	"errors"
	"testing"
)

// TestDefaultConfigValues verifies DefaultConfig returns expected field values.
func TestDefaultConfigValues(t *testing.T) {
	c := DefaultConfig()

	if c.MaxFailures != 1<<24 {
		t.Errorf("MaxFailures = %d, want %d", c.MaxFailures, 1<<24)
	}
	if c.MaxStack != 1<<22 {
		t.Errorf("MaxStack = %d, want %d", c.MaxStack, 1<<22)
	}
	if !c.EnablePrefilter || !c.EnableBMH || !c.EnableLiteralSet {
		t.Error("accelerators should be enabled by default")
	}
	if c.MaxLiterals != 64 {
		t.Errorf("MaxLiterals = %d, want 64", c.MaxLiterals)
	}
	if c.MaxNestingDepth != 1000 {
		t.Errorf("MaxNestingDepth = %d, want 1000", c.MaxNestingDepth)
	}
	if c.Tracker.WarmupPeriod == 0 {
		t.Error("Tracker should carry the default tracker config")
	}
}

// TestDefaultConfigPassesValidation verifies DefaultConfig always validates.
func TestDefaultConfigPassesValidation(t *testing.T) {
	c := DefaultConfig()
	if err := c.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{"zero failures", func(c *Config) { c.MaxFailures = 0 }, "MaxFailures"},
		{"one failure", func(c *Config) { c.MaxFailures = 1 }, ""},
		{"max failures", func(c *Config) { c.MaxFailures = 1 << 40 }, ""},
		{"too many failures", func(c *Config) { c.MaxFailures = 1<<40 + 1 }, "MaxFailures"},
		{"shallow stack", func(c *Config) { c.MaxStack = 63 }, "MaxStack"},
		{"min stack", func(c *Config) { c.MaxStack = 64 }, ""},
		{"deep stack", func(c *Config) { c.MaxStack = 1<<30 + 1 }, "MaxStack"},
		{"zero literals", func(c *Config) { c.MaxLiterals = 0 }, "MaxLiterals"},
		{"max literals", func(c *Config) { c.MaxLiterals = 1000 }, ""},
		{"too many literals", func(c *Config) { c.MaxLiterals = 1001 }, "MaxLiterals"},
		{"literals ignored without extraction", func(c *Config) {
			c.MaxLiterals = 0
			c.EnablePrefilter = false
			c.EnableLiteralSet = false
		}, ""},
		{"shallow nesting", func(c *Config) { c.MaxNestingDepth = 9 }, "MaxNestingDepth"},
		{"min nesting", func(c *Config) { c.MaxNestingDepth = 10 }, ""},
		{"max nesting", func(c *Config) { c.MaxNestingDepth = 100_000 }, ""},
		{"deep nesting", func(c *Config) { c.MaxNestingDepth = 100_001 }, "MaxNestingDepth"},
		{"negative efficiency", func(c *Config) { c.Tracker.MinEfficiency = -0.1 }, "Tracker.MinEfficiency"},
		{"efficiency above one", func(c *Config) { c.Tracker.MinEfficiency = 1.5 }, "Tracker.MinEfficiency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.modify(&c)
			err := c.Validate()

			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error type = %T, want *ConfigError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("ConfigError.Field = %q, want %q", cfgErr.Field, tt.wantField)
			}
		})
	}
}

// TestConfigErrorFormat verifies the error message layout.
func TestConfigErrorFormat(t *testing.T) {
	err := &ConfigError{Field: "MaxLiterals", Message: "must be between 1 and 1,000"}
	want := "ecmare: invalid config: MaxLiterals: must be between 1 and 1,000"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
