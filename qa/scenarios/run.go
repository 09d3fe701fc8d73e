package scenarios

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/energyalloc/core/constraint"
	"github.com/kilianp07/energyalloc/core/cost"
	"github.com/kilianp07/energyalloc/core/registry"
	"github.com/kilianp07/energyalloc/core/sampler"
	"github.com/kilianp07/energyalloc/infra/logger"
	"github.com/kilianp07/energyalloc/infra/metrics"
)

func RunScenario(t *testing.T, sc *Scenario) {
	reg := registry.New()
	if err := build(reg, sc); err != nil {
		expectError(t, sc, err)
		return
	}

	if sc.Check != nil {
		runCheck(t, sc, reg)
		return
	}

	promReg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(promReg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	smp, err := sampler.New(reg, sampler.Config{
		MaxAttempts: sc.Sampler.MaxAttempts,
		Seed:        sc.Sampler.Seed,
		Precheck:    sc.Sampler.Precheck,
		NarrowDraws: sc.Sampler.NarrowDraws,
	}, sampler.WithSink(sink), sampler.WithLogger(logger.NopLogger{}))
	if err != nil {
		t.Fatalf("sampler: %v", err)
	}

	batch, err := smp.GenerateMany(context.Background(), sc.Samples)
	if err != nil {
		expectError(t, sc, err)
		return
	}
	if sc.Expected.Error != "" {
		t.Fatalf("scenario %s expected %s error, got none", sc.Name, sc.Expected.Error)
	}

	if len(batch.Allocations) != len(batch.Costs) {
		t.Errorf("scenario %s: %d allocations but %d costs", sc.Name, len(batch.Allocations), len(batch.Costs))
	}
	checker := constraint.NewChecker(reg)
	for i, a := range batch.Allocations {
		if err := checker.CheckIntegrity(a, constraint.DefaultTolerance); err != nil {
			t.Errorf("scenario %s: sample %d failed integrity: %v", sc.Name, i, err)
		}
	}
	if batch.Len() < sc.Expected.MinSamples {
		t.Errorf("scenario %s expected at least %d samples, got %d", sc.Name, sc.Expected.MinSamples, batch.Len())
	}
	if sc.Expected.Duplicates != 0 && batch.Duplicates != sc.Expected.Duplicates {
		t.Errorf("scenario %s expected %d duplicates, got %d", sc.Name, sc.Expected.Duplicates, batch.Duplicates)
	}
	if got := acceptedAttempts(t, promReg); int(got) != batch.Len()+batch.Duplicates {
		t.Errorf("scenario %s: accepted attempts metric %v, want %d", sc.Name, got, batch.Len()+batch.Duplicates)
	}
}

func build(reg *registry.Registry, sc *Scenario) error {
	for _, s := range sc.Sources {
		if err := reg.AddSource(s.ToModel()); err != nil {
			return err
		}
	}
	for _, c := range sc.Consumers {
		if err := reg.AddConsumer(c.ToModel()); err != nil {
			return err
		}
	}
	return reg.RefreshBounds()
}

func runCheck(t *testing.T, sc *Scenario, reg *registry.Registry) {
	checker := constraint.NewChecker(reg)
	if err := checker.Check(sc.Check, constraint.DefaultTolerance); err != nil {
		expectError(t, sc, err)
		return
	}
	c, err := cost.NewEvaluator(reg).CostOf(sc.Check, false)
	if err != nil {
		t.Fatalf("scenario %s: cost: %v", sc.Name, err)
	}
	if math.Abs(c-sc.Expected.Cost) > 1e-9 {
		t.Errorf("scenario %s expected cost %v, got %v", sc.Name, sc.Expected.Cost, c)
	}
}

func expectError(t *testing.T, sc *Scenario, err error) {
	t.Helper()
	var want error
	switch sc.Expected.Error {
	case "duplicate":
		want = registry.ErrDuplicateKey
	case "infeasible":
		want = sampler.ErrInfeasible
	case "integrity":
		var ie *constraint.IntegrityError
		if !errors.As(err, &ie) {
			t.Errorf("scenario %s expected integrity error, got %v", sc.Name, err)
		}
		return
	default:
		t.Fatalf("scenario %s: unexpected error: %v", sc.Name, err)
	}
	if !errors.Is(err, want) {
		t.Errorf("scenario %s expected %v, got %v", sc.Name, want, err)
	}
}

// acceptedAttempts sums the accepted series of the attempts counter.
func acceptedAttempts(t *testing.T, reg *prometheus.Registry) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var total float64
	for _, mf := range mfs {
		if mf.GetName() != "sampler_attempts_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" && l.GetValue() == "accepted" {
					total += m.GetCounter().GetValue()
				}
			}
		}
	}
	return total
}
