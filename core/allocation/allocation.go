// Package allocation holds the flow matrix exchanged between the sampler, the
// constraint evaluator and the cost evaluator.
//
// Rows are indexed by source and columns by consumer, both in registry
// insertion order. An allocation may be built from a 2-D slice, from a flat
// row-major slice or from any gonum matrix; all of them yield the same row
// and column totals for equivalent data.
package allocation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrInvalidShape is returned when a representation is neither the flat nor the
// matrix form expected for the registry dimensions.
var ErrInvalidShape = errors.New("invalid allocation shape")

// Key is a structural identity of an allocation, used to detect exact duplicates.
type Key string

// Allocation is an immutable rows×cols matrix of flow amounts.
type Allocation struct {
	m *mat.Dense
}

// FromFlat builds an allocation from a row-major flat slice of length rows*cols.
func FromFlat(flat []float64, rows, cols int) (Allocation, error) {
	if rows <= 0 || cols <= 0 {
		return Allocation{}, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidShape, rows, cols)
	}
	if len(flat) != rows*cols {
		return Allocation{}, fmt.Errorf("%w: flat length %d, want %d", ErrInvalidShape, len(flat), rows*cols)
	}
	data := make([]float64, len(flat))
	copy(data, flat)
	return Allocation{m: mat.NewDense(rows, cols, data)}, nil
}

// FromMatrix builds an allocation from a rectangular 2-D slice.
func FromMatrix(rows [][]float64) (Allocation, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return Allocation{}, fmt.Errorf("%w: empty matrix", ErrInvalidShape)
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return Allocation{}, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidShape, i, len(r), cols)
		}
		data = append(data, r...)
	}
	return Allocation{m: mat.NewDense(len(rows), cols, data)}, nil
}

// FromDense copies any gonum matrix into an allocation.
func FromDense(m mat.Matrix) (Allocation, error) {
	if d, ok := m.(*mat.Dense); m == nil || ok && d == nil {
		return Allocation{}, fmt.Errorf("%w: nil matrix", ErrInvalidShape)
	}
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return Allocation{}, fmt.Errorf("%w: empty matrix", ErrInvalidShape)
	}
	return Allocation{m: mat.DenseCopyOf(m)}, nil
}

// MustFromMatrix is like FromMatrix but panics on malformed input. It is meant
// for literals in tests and examples.
func MustFromMatrix(rows [][]float64) Allocation {
	a, err := FromMatrix(rows)
	if err != nil {
		panic(err)
	}
	return a
}

// Parse normalises the supported representations into an allocation of the
// given dimensions. Accepted inputs are Allocation, []float64 (row-major,
// length rows*cols), [][]float64 (rows×cols), mat.Vector (length rows*cols)
// and mat.Matrix (rows×cols).
func Parse(raw any, rows, cols int) (Allocation, error) {
	var (
		a   Allocation
		err error
	)
	switch v := raw.(type) {
	case Allocation:
		a = v
	case *Allocation:
		if v == nil {
			return Allocation{}, fmt.Errorf("%w: nil allocation", ErrInvalidShape)
		}
		a = *v
	case []float64:
		return FromFlat(v, rows, cols)
	case [][]float64:
		a, err = FromMatrix(v)
	case *mat.VecDense:
		if v == nil {
			return Allocation{}, fmt.Errorf("%w: nil vector", ErrInvalidShape)
		}
		return fromVector(v, rows, cols)
	case *mat.Dense:
		if v == nil {
			return Allocation{}, fmt.Errorf("%w: nil matrix", ErrInvalidShape)
		}
		a, err = FromDense(v)
	case mat.Vector:
		return fromVector(v, rows, cols)
	case mat.Matrix:
		a, err = FromDense(v)
	default:
		return Allocation{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidShape, raw)
	}
	if err != nil {
		return Allocation{}, err
	}
	if r, c := a.Dims(); r != rows || c != cols {
		return Allocation{}, fmt.Errorf("%w: got %dx%d, want %dx%d", ErrInvalidShape, r, c, rows, cols)
	}
	return a, nil
}

func fromVector(v mat.Vector, rows, cols int) (Allocation, error) {
	if v.Len() != rows*cols {
		return Allocation{}, fmt.Errorf("%w: vector length %d, want %d", ErrInvalidShape, v.Len(), rows*cols)
	}
	flat := make([]float64, v.Len())
	for i := range flat {
		flat[i] = v.AtVec(i)
	}
	return FromFlat(flat, rows, cols)
}

// Dims returns the number of sources and consumers. The zero value is 0x0.
func (a Allocation) Dims() (rows, cols int) {
	if a.m == nil {
		return 0, 0
	}
	return a.m.Dims()
}

// IsZero reports whether the allocation was never initialised.
func (a Allocation) IsZero() bool { return a.m == nil }

// At returns the flow from source i to consumer j.
func (a Allocation) At(i, j int) float64 { return a.m.At(i, j) }

// Flatten returns a row-major copy of the entries.
func (a Allocation) Flatten() []float64 {
	r, c := a.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, a.m.RawRowView(i)...)
	}
	return out
}

// Rows returns a copy of the entries as a 2-D slice.
func (a Allocation) Rows() [][]float64 {
	r, _ := a.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, a.m)
	}
	return out
}

// Dense returns a copy of the underlying gonum matrix.
func (a Allocation) Dense() *mat.Dense { return mat.DenseCopyOf(a.m) }

// RowTotals returns the total flow supplied by each source.
func (a Allocation) RowTotals() []float64 {
	r, _ := a.Dims()
	out := make([]float64, r)
	for i := range out {
		out[i] = floats.Sum(a.m.RawRowView(i))
	}
	return out
}

// ColTotals returns the total flow received by each consumer.
func (a Allocation) ColTotals() []float64 {
	_, c := a.Dims()
	out := make([]float64, c)
	for j := range out {
		out[j] = floats.Sum(mat.Col(nil, j, a.m))
	}
	return out
}

// Min returns the smallest entry.
func (a Allocation) Min() float64 { return floats.Min(a.Flatten()) }

// Key returns the ordered tuple of all entries as a comparable value. Negative
// zero is folded into zero so that the key only reflects numeric value.
func (a Allocation) Key() Key {
	var sb strings.Builder
	for i, v := range a.Flatten() {
		if i > 0 {
			sb.WriteByte(',')
		}
		if v == 0 {
			v = 0
		}
		sb.WriteString(strconv.FormatUint(math.Float64bits(v), 16))
	}
	return Key(sb.String())
}

// Equal reports whether both allocations have identical dimensions and entries.
func (a Allocation) Equal(b Allocation) bool {
	if a.m == nil || b.m == nil {
		return a.m == b.m
	}
	return mat.Equal(a.m, b.m)
}

// MarshalJSON encodes the allocation as a 2-D array.
func (a Allocation) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Rows())
}

// UnmarshalJSON decodes a 2-D array.
func (a *Allocation) UnmarshalJSON(data []byte) error {
	var rows [][]float64
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	parsed, err := FromMatrix(rows)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a Allocation) String() string {
	if a.m == nil {
		return "[]"
	}
	return fmt.Sprintf("%v", a.Rows())
}
