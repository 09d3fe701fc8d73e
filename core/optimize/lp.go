package optimize

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/energyalloc/core/allocation"
	"github.com/kilianp07/energyalloc/core/cost"
	"github.com/kilianp07/energyalloc/core/registry"
)

// ErrInfeasible indicates that no allocation satisfies every demand without
// exceeding a capacity.
var ErrInfeasible = errors.New("allocation problem infeasible")

// simplexTol is the reduced-cost tolerance handed to the simplex solver.
const simplexTol = 1e-10

// Result is the optimal allocation and its cost.
type Result struct {
	Allocation allocation.Allocation
	Cost       float64
}

// lpSolve points to the solver. It can be overridden in tests to simulate
// solver failures.
var lpSolve = lp.Simplex

// Solve returns a minimum-cost feasible allocation for the bounds.
//
// Every source can serve every consumer, so the problem is feasible exactly
// when total capacity covers total demand; that test runs before the solver.
// The LP is written directly in standard form with one slack per source:
//
//	minimize   Σ cost_i x_ij
//	s.t.       Σ_j x_ij + s_i = capacity_i
//	           Σ_i x_ij       = demand_j
//	           x, s >= 0
func Solve(b registry.Bounds) (Result, error) {
	rows, cols := b.Dims()
	if rows == 0 || cols == 0 {
		return Result{}, fmt.Errorf("%w: %dx%d", allocation.ErrInvalidShape, rows, cols)
	}
	if supply, demand := floats.Sum(b.Capacities), floats.Sum(b.Demands); supply < demand {
		return Result{}, fmt.Errorf("%w: total capacity %g below total demand %g", ErrInfeasible, supply, demand)
	}

	nFlow := rows * cols
	nVar := nFlow + rows
	c := make([]float64, nVar)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			c[i*cols+j] = b.Costs[i]
		}
	}

	A := mat.NewDense(rows+cols, nVar, nil)
	rhs := make([]float64, rows+cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			A.Set(i, i*cols+j, 1)
		}
		A.Set(i, nFlow+i, 1)
		rhs[i] = b.Capacities[i]
	}
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			A.Set(rows+j, i*cols+j, 1)
		}
		rhs[rows+j] = b.Demands[j]
	}

	_, sol, err := lpSolve(c, A, rhs, simplexTol, nil)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return Result{}, fmt.Errorf("%w: %v", ErrInfeasible, err)
		}
		return Result{}, fmt.Errorf("solve lp: %w", err)
	}

	flows := make([]float64, nFlow)
	for k := range flows {
		flows[k] = math.Max(sol[k], 0)
	}
	a, err := allocation.FromFlat(flows, rows, cols)
	if err != nil {
		return Result{}, err
	}
	total, err := cost.Of(b, a)
	if err != nil {
		return Result{}, err
	}
	return Result{Allocation: a, Cost: total}, nil
}

// Feasible reports whether the bounds admit at least one feasible allocation.
// Solver failures other than infeasibility are returned as errors.
func Feasible(b registry.Bounds) (bool, error) {
	_, err := Solve(b)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrInfeasible):
		return false, nil
	default:
		return false, err
	}
}
