package registry

// Bounds is the snapshot of registry scalars used by the sampler and the
// evaluators. Slices are indexed by position.
type Bounds struct {
	SourceNames   []string
	Capacities    []float64
	Costs         []float64
	ConsumerNames []string
	Demands       []float64
}

// Dims returns the allocation dimensions implied by the bounds.
func (b Bounds) Dims() (rows, cols int) { return len(b.Capacities), len(b.Demands) }

// Is2x2 reports whether the bounds describe exactly two sources and two consumers.
func (b Bounds) Is2x2() bool {
	r, c := b.Dims()
	return r == 2 && c == 2
}

// SMax is the capacity of the first source.
func (b Bounds) SMax() float64 { return b.Capacities[0] }

// WMax is the capacity of the second source.
func (b Bounds) WMax() float64 { return b.Capacities[1] }

// DA is the demand of the first consumer.
func (b Bounds) DA() float64 { return b.Demands[0] }

// DB is the demand of the second consumer.
func (b Bounds) DB() float64 { return b.Demands[1] }

func (b Bounds) clone() Bounds {
	return Bounds{
		SourceNames:   append([]string(nil), b.SourceNames...),
		Capacities:    append([]float64(nil), b.Capacities...),
		Costs:         append([]float64(nil), b.Costs...),
		ConsumerNames: append([]string(nil), b.ConsumerNames...),
		Demands:       append([]float64(nil), b.Demands...),
	}
}
