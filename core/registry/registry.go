// Package registry owns the named sources and consumers of an allocation
// problem and caches the scalar bounds read by the sampler and the evaluators.
//
// Insertion order defines positions: the first registered source is row 0 of
// every allocation, the first registered consumer is column 0. A Registry is
// not safe for concurrent mutation; populate it from a single goroutine and
// call RefreshBounds before sampling or validating.
package registry

import (
	"errors"
	"fmt"

	"github.com/kilianp07/energyalloc/core/model"
)

var (
	// ErrDuplicateKey is returned when a name is registered twice.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrInvalidEntity is returned when a source or consumer fails validation.
	ErrInvalidEntity = errors.New("invalid entity")
	// ErrIncomplete is returned by RefreshBounds when sources or consumers are missing.
	ErrIncomplete = errors.New("registry incomplete")
	// ErrNotRefreshed is returned when bounds are read before the first RefreshBounds.
	ErrNotRefreshed = errors.New("bounds not computed")
	// ErrStaleBounds is returned when entities were registered after the last RefreshBounds.
	ErrStaleBounds = errors.New("bounds are stale")
)

// Registry stores sources and consumers in insertion order.
type Registry struct {
	sources     []model.Source
	consumers   []model.Consumer
	sourceIdx   map[string]int
	consumerIdx map[string]int

	bounds    Bounds
	refreshed bool
	stale     bool
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		sourceIdx:   make(map[string]int),
		consumerIdx: make(map[string]int),
	}
}

// AddSource registers a source. The registry is left unchanged on error.
func (r *Registry) AddSource(s model.Source) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntity, err)
	}
	if _, ok := r.sourceIdx[s.Name]; ok {
		return fmt.Errorf("%w: source %s exists already", ErrDuplicateKey, s.Name)
	}
	if s.Unit == "" {
		s.Unit = model.DefaultUnit
	}
	r.sourceIdx[s.Name] = len(r.sources)
	r.sources = append(r.sources, s)
	r.markStale()
	return nil
}

// AddConsumer registers a consumer. The registry is left unchanged on error.
func (r *Registry) AddConsumer(c model.Consumer) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntity, err)
	}
	if _, ok := r.consumerIdx[c.Name]; ok {
		return fmt.Errorf("%w: consumer %s exists already", ErrDuplicateKey, c.Name)
	}
	r.consumerIdx[c.Name] = len(r.consumers)
	r.consumers = append(r.consumers, c)
	r.markStale()
	return nil
}

func (r *Registry) markStale() {
	if r.refreshed {
		r.stale = true
	}
}

// RefreshBounds recomputes the cached bounds from the current contents.
func (r *Registry) RefreshBounds() error {
	if len(r.sources) == 0 || len(r.consumers) == 0 {
		return fmt.Errorf("%w: %d sources, %d consumers", ErrIncomplete, len(r.sources), len(r.consumers))
	}
	b := Bounds{
		SourceNames:   make([]string, len(r.sources)),
		Capacities:    make([]float64, len(r.sources)),
		Costs:         make([]float64, len(r.sources)),
		ConsumerNames: make([]string, len(r.consumers)),
		Demands:       make([]float64, len(r.consumers)),
	}
	for i, s := range r.sources {
		b.SourceNames[i] = s.Name
		b.Capacities[i] = s.Capacity
		b.Costs[i] = s.CostPerUnit
	}
	for j, c := range r.consumers {
		b.ConsumerNames[j] = c.Name
		b.Demands[j] = c.Demand
	}
	r.bounds = b
	r.refreshed = true
	r.stale = false
	return nil
}

// Bounds returns a copy of the cached bounds.
func (r *Registry) Bounds() (Bounds, error) {
	if !r.refreshed {
		return Bounds{}, ErrNotRefreshed
	}
	if r.stale {
		return Bounds{}, ErrStaleBounds
	}
	return r.bounds.clone(), nil
}

// Sources returns the registered sources in position order.
func (r *Registry) Sources() []model.Source {
	out := make([]model.Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// Consumers returns the registered consumers in position order.
func (r *Registry) Consumers() []model.Consumer {
	out := make([]model.Consumer, len(r.consumers))
	copy(out, r.consumers)
	return out
}

// Source looks up a source by name.
func (r *Registry) Source(name string) (model.Source, bool) {
	i, ok := r.sourceIdx[name]
	if !ok {
		return model.Source{}, false
	}
	return r.sources[i], true
}

// Consumer looks up a consumer by name.
func (r *Registry) Consumer(name string) (model.Consumer, bool) {
	i, ok := r.consumerIdx[name]
	if !ok {
		return model.Consumer{}, false
	}
	return r.consumers[i], true
}

// Len returns the number of sources and consumers.
func (r *Registry) Len() (sources, consumers int) {
	return len(r.sources), len(r.consumers)
}
