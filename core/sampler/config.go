package sampler

import (
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/energyalloc/core/constraint"
)

// DefaultMaxAttempts bounds the rejection loop of a single solution.
const DefaultMaxAttempts = 10000

// Config defines sampler settings.
type Config struct {
	// MaxAttempts is the number of candidates drawn before giving up.
	MaxAttempts int `json:"max_attempts"`
	// Tolerance is the absolute tolerance of the integrity check. Nil selects
	// constraint.DefaultTolerance; an explicit zero requires exact equality.
	Tolerance *float64 `json:"tolerance"`
	// TimeoutSeconds caps the wall-clock time of a single solution. Zero disables it.
	TimeoutSeconds float64 `json:"timeout_seconds"`
	// Seed makes the draws reproducible. Zero picks a random seed.
	Seed uint64 `json:"seed"`
	// Precheck solves the allocation LP before sampling and fails fast when
	// the configuration is infeasible.
	Precheck bool `json:"precheck"`
	// NarrowDraws restricts the uniform draws to intervals that respect the
	// first source capacity, the consumer demands and the lower bound on a+c
	// implied by the second source capacity. Whenever a feasible allocation
	// exists every draw is accepted, but the sampled distribution changes.
	NarrowDraws bool `json:"narrow_draws"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.MaxAttempts == 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.Tolerance == nil {
		tol := constraint.DefaultTolerance
		c.Tolerance = &tol
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max_attempts must be positive, got %d", c.MaxAttempts)
	}
	if tol := c.Tol(); tol < 0 || math.IsNaN(tol) {
		return fmt.Errorf("tolerance must be non-negative, got %v", tol)
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must be non-negative, got %v", c.TimeoutSeconds)
	}
	return nil
}

// Timeout returns the wall-clock cap as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds * float64(time.Second))
}

// Tol returns the effective integrity tolerance.
func (c Config) Tol() float64 {
	if c.Tolerance == nil {
		return constraint.DefaultTolerance
	}
	return *c.Tolerance
}
