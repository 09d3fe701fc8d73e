package sampler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kilianp07/energyalloc/core/allocation"
	"github.com/kilianp07/energyalloc/core/constraint"
	"github.com/kilianp07/energyalloc/core/logger"
	"github.com/kilianp07/energyalloc/core/metrics"
	"github.com/kilianp07/energyalloc/core/optimize"
	"github.com/kilianp07/energyalloc/core/registry"
)

// Sampler generates feasible allocations by rejection sampling.
type Sampler struct {
	reg  *registry.Registry
	cfg  Config
	src  rand.Source
	log  logger.Logger
	sink metrics.Sink
	now  func() time.Time
}

// Option customises a Sampler.
type Option func(*Sampler)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Sampler) { s.log = logger.OrNop(l) }
}

// WithSink sets the metrics sink.
func WithSink(sink metrics.Sink) Option {
	return func(s *Sampler) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithSource overrides the random source derived from the configured seed.
func WithSource(src rand.Source) Option {
	return func(s *Sampler) {
		if src != nil {
			s.src = src
		}
	}
}

// New returns a sampler reading bounds from reg. Defaults are applied to cfg
// before validation.
func New(reg *registry.Registry, cfg Config, opts ...Option) (*Sampler, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is required")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sampler config: %w", err)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	s := &Sampler{
		reg:  reg,
		cfg:  cfg,
		src:  rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
		log:  logger.Nop{},
		sink: metrics.NopSink{},
		now:  time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Config returns the effective configuration.
func (s *Sampler) Config() Config { return s.cfg }

// GenerateOne returns the first accepted candidate. It fails with an
// *InfeasibleError once the attempt cap or the wall-clock cap is reached.
func (s *Sampler) GenerateOne(ctx context.Context) (allocation.Allocation, error) {
	b, err := s.bounds()
	if err != nil {
		return allocation.Allocation{}, err
	}
	if err := s.precheck(b); err != nil {
		return allocation.Allocation{}, err
	}
	a, _, err := s.generate(ctx, b)
	return a, err
}

func (s *Sampler) bounds() (registry.Bounds, error) {
	b, err := s.reg.Bounds()
	if err != nil {
		return registry.Bounds{}, err
	}
	if !b.Is2x2() {
		rows, cols := b.Dims()
		return registry.Bounds{}, fmt.Errorf("%w: got %d sources, %d consumers", ErrUnsupportedTopology, rows, cols)
	}
	return b, nil
}

func (s *Sampler) precheck(b registry.Bounds) error {
	if !s.cfg.Precheck {
		return nil
	}
	ok, err := optimize.Feasible(b)
	if err != nil {
		return fmt.Errorf("feasibility precheck: %w", err)
	}
	if !ok {
		s.log.Warnf("sampler: precheck found no feasible allocation (capacities %v, demands %v)", b.Capacities, b.Demands)
		return &InfeasibleError{Cause: optimize.ErrInfeasible}
	}
	return nil
}

// generate runs the bounded rejection loop and returns the number of
// candidates drawn.
func (s *Sampler) generate(ctx context.Context, b registry.Bounds) (allocation.Allocation, int, error) {
	if timeout := s.cfg.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	reasons := make(map[string]int)
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			s.log.Warnf("sampler: stopped after %d attempts: %v", attempt-1, err)
			return allocation.Allocation{}, attempt - 1, &InfeasibleError{Attempts: attempt - 1, Reasons: reasons, Cause: err}
		}
		cand, reason := s.propose(b)
		if reason == "" {
			s.record(metrics.OutcomeAccepted, "")
			return cand, attempt, nil
		}
		reasons[reason]++
		s.record(metrics.OutcomeRejected, reason)
	}
	err := &InfeasibleError{Attempts: s.cfg.MaxAttempts, Reasons: reasons}
	s.log.Warnf("sampler: %v", err)
	return allocation.Allocation{}, s.cfg.MaxAttempts, err
}

// propose draws one candidate and returns it with an empty reason when it is
// feasible. Rows are sources and columns consumers:
//
//	[[a, c],
//	 [b, d]]
func (s *Sampler) propose(bd registry.Bounds) (allocation.Allocation, string) {
	sMax, dA, dB := bd.SMax(), bd.DA(), bd.DB()

	// Source 2 carries b+d = D_A+D_B-(a+c), so a+c must reach need.
	need := dA + dB - bd.WMax()

	loA, hiA := 0.0, dA
	if s.cfg.NarrowDraws {
		hiA = math.Min(dA, sMax)
		loA = math.Min(math.Max(0, need-dB), hiA)
	}
	a := s.uniform(loA, hiA)
	b := dA - a

	maxC := sMax - a
	if maxC < 0 {
		return allocation.Allocation{}, ReasonEmptyInterval
	}
	loC, hiC := 0.0, math.Min(maxC, sMax)
	if s.cfg.NarrowDraws {
		hiC = math.Min(hiC, dB)
		loC = math.Max(0, need-a)
		if loC > hiC {
			if loC-hiC > s.cfg.Tol() {
				return allocation.Allocation{}, ReasonEmptyInterval
			}
			loC = hiC
		}
	}
	c := s.uniform(loC, hiC)
	d := dB - c

	flows := []float64{a, c, b, d}
	if floats.Min(flows) < 0 {
		return allocation.Allocation{}, ReasonNegativeEntry
	}
	cand, err := allocation.FromFlat(flows, 2, 2)
	if err != nil {
		return allocation.Allocation{}, ReasonIntegrity
	}
	// The second source capacity (b+d <= W_max) is part of the integrity check.
	if err := constraint.CheckBounds(bd, cand, s.cfg.Tol()); err != nil {
		return allocation.Allocation{}, rejectionReason(err)
	}
	return cand, ""
}

func (s *Sampler) uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return distuv.Uniform{Min: lo, Max: hi, Src: s.src}.Rand()
}

func (s *Sampler) record(outcome, reason string) {
	if err := s.sink.RecordAttempt(metrics.AttemptEvent{Outcome: outcome, Reason: reason, Time: s.now()}); err != nil {
		s.log.Warnf("sampler: record attempt: %v", err)
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, constraint.ErrDemandNotMet):
		return ReasonDemandNotMet
	case errors.Is(err, constraint.ErrCapacityExceeded):
		return ReasonCapacityExceeded
	case errors.Is(err, constraint.ErrNegativeFlow):
		return ReasonNegativeEntry
	default:
		return ReasonIntegrity
	}
}
