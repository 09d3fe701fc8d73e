// Package cost evaluates the linear cost of an allocation.
//
// The cost depends only on the total flow supplied by each source:
//
//	cost = Σ_i costPerUnit(source_i) · rowTotal_i
//
// Which consumer received the flow is irrelevant; there is no per-edge cost.
package cost

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/energyalloc/core/allocation"
	"github.com/kilianp07/energyalloc/core/constraint"
	"github.com/kilianp07/energyalloc/core/registry"
)

// Evaluator computes allocation costs from the registry bounds.
type Evaluator struct {
	reg       *registry.Registry
	checker   *constraint.Checker
	tolerance float64
}

// NewEvaluator returns an Evaluator that validates with the default tolerance.
func NewEvaluator(reg *registry.Registry) *Evaluator {
	return &Evaluator{reg: reg, checker: constraint.NewChecker(reg), tolerance: constraint.DefaultTolerance}
}

// WithTolerance returns a copy of the evaluator using tol when validating.
func (e *Evaluator) WithTolerance(tol float64) *Evaluator {
	cp := *e
	cp.tolerance = tol
	return &cp
}

// Cost returns the cost of a. When validate is set the allocation is checked
// first and integrity errors are returned unchanged.
func (e *Evaluator) Cost(a allocation.Allocation, validate bool) (float64, error) {
	b, err := e.reg.Bounds()
	if err != nil {
		return 0, err
	}
	if validate {
		if err := constraint.CheckBounds(b, a, e.tolerance); err != nil {
			return 0, err
		}
	}
	return Of(b, a)
}

// CostOf parses a flat or matrix representation and returns its cost.
func (e *Evaluator) CostOf(raw any, validate bool) (float64, error) {
	a, err := e.checker.Parse(raw)
	if err != nil {
		return 0, err
	}
	return e.Cost(a, validate)
}

// Of computes the cost of a against an explicit bounds snapshot without
// validating feasibility.
func Of(b registry.Bounds, a allocation.Allocation) (float64, error) {
	rows, cols := b.Dims()
	if r, c := a.Dims(); r != rows || c != cols {
		return 0, fmt.Errorf("%w: got %dx%d, want %dx%d", allocation.ErrInvalidShape, r, c, rows, cols)
	}
	return floats.Dot(b.Costs, a.RowTotals()), nil
}
