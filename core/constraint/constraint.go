// Package constraint validates allocations against the demand equalities and
// capacity inequalities of a registry.
//
// Every comparison goes through WithinTolerance or AtMost so that demand,
// capacity and sign checks share one notion of numeric tolerance.
package constraint

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/kilianp07/energyalloc/core/allocation"
	"github.com/kilianp07/energyalloc/core/registry"
)

// DefaultTolerance is the absolute tolerance applied when callers have no
// better estimate of accumulated floating point error.
const DefaultTolerance = 1e-9

var (
	// ErrDemandNotMet indicates a consumer total differs from its demand.
	ErrDemandNotMet = errors.New("demand not met")
	// ErrCapacityExceeded indicates a source total exceeds its capacity.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrNegativeFlow indicates an entry below zero.
	ErrNegativeFlow = errors.New("negative flow")
	// ErrInvalidTolerance is returned for negative or NaN tolerances.
	ErrInvalidTolerance = errors.New("invalid tolerance")
)

// IntegrityError describes the first constraint violated by an allocation.
type IntegrityError struct {
	Kind error  // one of ErrDemandNotMet, ErrCapacityExceeded, ErrNegativeFlow
	Name string // consumer or source name
	Got  float64
	Want float64
}

// Discrepancy returns Got-Want.
func (e *IntegrityError) Discrepancy() float64 { return e.Got - e.Want }

func (e *IntegrityError) Error() string {
	switch e.Kind {
	case ErrDemandNotMet:
		return fmt.Sprintf("%v: consumer %s received %g, demand %g (discrepancy %g)", e.Kind, e.Name, e.Got, e.Want, e.Discrepancy())
	case ErrCapacityExceeded:
		return fmt.Sprintf("%v: source %s supplied %g, capacity %g (discrepancy %g)", e.Kind, e.Name, e.Got, e.Want, e.Discrepancy())
	default:
		return fmt.Sprintf("%v: %s has entry %g", e.Kind, e.Name, e.Got)
	}
}

func (e *IntegrityError) Unwrap() error { return e.Kind }

// WithinTolerance reports whether a and b differ by at most tol.
func WithinTolerance(a, b, tol float64) bool {
	return scalar.EqualWithinAbs(a, b, tol)
}

// AtMost reports whether x does not exceed bound by more than tol.
func AtMost(x, bound, tol float64) bool {
	return x <= bound || WithinTolerance(x, bound, tol)
}

// Checker validates allocations against the current registry bounds.
type Checker struct {
	reg *registry.Registry
}

// NewChecker returns a Checker reading bounds from reg on every call.
func NewChecker(reg *registry.Registry) *Checker {
	return &Checker{reg: reg}
}

// Parse converts a flat or matrix representation into an allocation shaped
// after the registry.
func (c *Checker) Parse(raw any) (allocation.Allocation, error) {
	b, err := c.reg.Bounds()
	if err != nil {
		return allocation.Allocation{}, err
	}
	rows, cols := b.Dims()
	return allocation.Parse(raw, rows, cols)
}

// TotalFlowBySource returns the row totals of a flat or matrix allocation.
func (c *Checker) TotalFlowBySource(raw any) ([]float64, error) {
	a, err := c.Parse(raw)
	if err != nil {
		return nil, err
	}
	return a.RowTotals(), nil
}

// TotalFlowByConsumer returns the column totals of a flat or matrix allocation.
func (c *Checker) TotalFlowByConsumer(raw any) ([]float64, error) {
	a, err := c.Parse(raw)
	if err != nil {
		return nil, err
	}
	return a.ColTotals(), nil
}

// CheckIntegrity validates a against the registry bounds. It never modifies a.
func (c *Checker) CheckIntegrity(a allocation.Allocation, tol float64) error {
	b, err := c.reg.Bounds()
	if err != nil {
		return err
	}
	return CheckBounds(b, a, tol)
}

// Check parses raw and validates it.
func (c *Checker) Check(raw any, tol float64) error {
	a, err := c.Parse(raw)
	if err != nil {
		return err
	}
	return c.CheckIntegrity(a, tol)
}

// CheckBounds validates a against an explicit bounds snapshot. Demands are
// checked first, then capacities, then signs; the first violation is returned.
func CheckBounds(b registry.Bounds, a allocation.Allocation, tol float64) error {
	if tol < 0 || math.IsNaN(tol) {
		return fmt.Errorf("%w: %v", ErrInvalidTolerance, tol)
	}
	rows, cols := b.Dims()
	if r, c := a.Dims(); r != rows || c != cols {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", allocation.ErrInvalidShape, r, c, rows, cols)
	}
	for j, got := range a.ColTotals() {
		if !WithinTolerance(got, b.Demands[j], tol) {
			return &IntegrityError{Kind: ErrDemandNotMet, Name: b.ConsumerNames[j], Got: got, Want: b.Demands[j]}
		}
	}
	for i, got := range a.RowTotals() {
		if !AtMost(got, b.Capacities[i], tol) {
			return &IntegrityError{Kind: ErrCapacityExceeded, Name: b.SourceNames[i], Got: got, Want: b.Capacities[i]}
		}
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := a.At(i, j); v < 0 && !WithinTolerance(v, 0, tol) {
				return &IntegrityError{
					Kind: ErrNegativeFlow,
					Name: b.SourceNames[i] + "->" + b.ConsumerNames[j],
					Got:  v,
				}
			}
		}
	}
	return nil
}
