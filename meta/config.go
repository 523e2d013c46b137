// Package meta orchestrates searches over a compiled pattern.
//
// An Engine owns the backtracking executor and the accelerators built for
// the pattern:
//   - BMH: the whole pattern is a literal of two or more code points
//   - Literal set: the pattern is an alternation of literals (Aho-Corasick)
//   - Prefilter: literal prefixes or first bytes narrow the start positions
//   - Backtrack: every start position is tried in turn
//
// The accelerators report exactly the match the executor would report, so
// strategy selection never changes results, only the work done to find them.
package meta

import (
	"github.com/coregx/ecmare/nfa"
	"github.com/coregx/ecmare/prefilter"
)

// Config controls compilation limits and the accelerators an Engine may use.
//
// Example:
//
//	config := meta.DefaultConfig()
//	config.EnableBMH = false // always run the executor
//	engine, err := meta.CompileWithConfig(`hello`, 0, config)
type Config struct {
	// MaxFailures is the failure budget of one match attempt. A search
	// whose attempt exceeds it fails with nfa.ErrComplexity.
	// Default: 16777216
	MaxFailures int64

	// MaxStack is the number of backtracking frames one match attempt may
	// hold. A search whose attempt exceeds it fails with nfa.ErrStack.
	// Default: 4194304
	MaxStack int

	// EnablePrefilter enables literal and first-byte candidate search.
	// Default: true
	EnablePrefilter bool

	// EnableBMH enables the Boyer-Moore-Horspool search for patterns that
	// are a single literal.
	// Default: true
	EnableBMH bool

	// EnableLiteralSet enables the Aho-Corasick matcher for patterns that
	// are an alternation of literals.
	// Default: true
	EnableLiteralSet bool

	// MaxLiterals limits the number of prefix literals extracted for the
	// prefilter and the literal set.
	// Default: 64
	MaxLiterals int

	// MaxNestingDepth bounds group nesting during compilation.
	// Default: 1000
	MaxNestingDepth int

	// Tracker configures when an ineffective prefilter is abandoned.
	Tracker prefilter.TrackerConfig
}

// DefaultConfig returns a configuration with every accelerator enabled.
func DefaultConfig() Config {
	return Config{
		MaxFailures:      nfa.DefaultMaxFailures,
		MaxStack:         nfa.DefaultMaxStack,
		EnablePrefilter:  true,
		EnableBMH:        true,
		EnableLiteralSet: true,
		MaxLiterals:      64,
		MaxNestingDepth:  nfa.DefaultMaxNestingDepth,
		Tracker:          prefilter.DefaultTrackerConfig(),
	}
}

// Validate checks if the configuration is valid.
// Returns an error describing the first invalid parameter.
func (c *Config) Validate() error {
	if c.MaxFailures < 1 || c.MaxFailures > 1<<40 {
		return &ConfigError{
			Field:   "MaxFailures",
			Message: "must be between 1 and 2^40",
		}
	}

	if c.MaxStack < 64 || c.MaxStack > 1<<30 {
		return &ConfigError{
			Field:   "MaxStack",
			Message: "must be between 64 and 2^30",
		}
	}

	if c.EnablePrefilter || c.EnableLiteralSet {
		if c.MaxLiterals < 1 || c.MaxLiterals > 1_000 {
			return &ConfigError{
				Field:   "MaxLiterals",
				Message: "must be between 1 and 1,000",
			}
		}
	}

	if c.MaxNestingDepth < 10 || c.MaxNestingDepth > 100_000 {
		return &ConfigError{
			Field:   "MaxNestingDepth",
			Message: "must be between 10 and 100,000",
		}
	}

	if c.Tracker.MinEfficiency < 0 || c.Tracker.MinEfficiency > 1 {
		return &ConfigError{
			Field:   "Tracker.MinEfficiency",
			Message: "must be between 0 and 1",
		}
	}

	return nil
}

// ConfigError represents an invalid configuration parameter.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "ecmare: invalid config: " + e.Field + ": " + e.Message
}
