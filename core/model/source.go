package model

import (
	"fmt"
	"math"
)

// DefaultUnit is the display unit used when a source does not set one.
const DefaultUnit = "kW"

// Source represents an energy source able to supply flow to consumers.
type Source struct {
	Name        string
	Capacity    float64 // upper bound on the total flow the source may supply
	CostPerUnit float64 // cost of one unit of supplied flow
	Unit        string  // display only
}

// NewSource returns a Source with the default unit applied when unit is empty.
func NewSource(name string, capacity, costPerUnit float64, unit string) Source {
	if unit == "" {
		unit = DefaultUnit
	}
	return Source{Name: name, Capacity: capacity, CostPerUnit: costPerUnit, Unit: unit}
}

// Validate checks that the source configuration is sound.
func (s Source) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("source name is required")
	}
	if s.Capacity < 0 || math.IsNaN(s.Capacity) || math.IsInf(s.Capacity, 0) {
		return fmt.Errorf("source %s: capacity must be a finite non-negative number, got %v", s.Name, s.Capacity)
	}
	if s.CostPerUnit < 0 || math.IsNaN(s.CostPerUnit) || math.IsInf(s.CostPerUnit, 0) {
		return fmt.Errorf("source %s: cost per unit must be a finite non-negative number, got %v", s.Name, s.CostPerUnit)
	}
	return nil
}

// String returns a short human-readable description.
func (s Source) String() string {
	return fmt.Sprintf("%s(cap=%g %s, cost=%g)", s.Name, s.Capacity, s.Unit, s.CostPerUnit)
}
