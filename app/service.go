package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/kilianp07/energyalloc/config"
	"github.com/kilianp07/energyalloc/core/allocation"
	"github.com/kilianp07/energyalloc/core/constraint"
	"github.com/kilianp07/energyalloc/core/cost"
	coremetrics "github.com/kilianp07/energyalloc/core/metrics"
	"github.com/kilianp07/energyalloc/core/optimize"
	"github.com/kilianp07/energyalloc/core/registry"
	"github.com/kilianp07/energyalloc/core/report"
	"github.com/kilianp07/energyalloc/core/sampler"
	"github.com/kilianp07/energyalloc/infra/logger"
	"github.com/kilianp07/energyalloc/infra/metrics"
	"github.com/kilianp07/energyalloc/pkg/export"
)

// Service wires the registry, sampler, evaluators and metrics sink built from
// the configuration.
type Service struct {
	Registry  *registry.Registry
	Sampler   *sampler.Sampler
	Checker   *constraint.Checker
	Evaluator *cost.Evaluator

	cfg  *config.Config
	sink coremetrics.Sink
	log  logger.Logger
}

// Option customises a Service.
type Option func(*options)

type options struct {
	sink    coremetrics.Sink
	log     logger.Logger
	sampler []sampler.Option
}

// WithSink replaces the sink built from the metrics configuration.
func WithSink(s coremetrics.Sink) Option { return func(o *options) { o.sink = s } }

// WithLogger replaces the zerolog logger.
func WithLogger(l logger.Logger) Option { return func(o *options) { o.log = l } }

// WithSamplerOptions forwards options to the sampler.
func WithSamplerOptions(opts ...sampler.Option) Option {
	return func(o *options) { o.sampler = append(o.sampler, opts...) }
}

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	if o.log == nil {
		o.log = logger.New("service")
	}
	if o.sink == nil {
		sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
		if err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
		o.sink = sink
	}

	reg, err := cfg.BuildRegistry()
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	samplerOpts := append([]sampler.Option{
		sampler.WithLogger(logger.New("sampler")),
		sampler.WithSink(o.sink),
	}, o.sampler...)
	smp, err := sampler.New(reg, cfg.Sampler, samplerOpts...)
	if err != nil {
		return nil, fmt.Errorf("sampler: %w", err)
	}

	return &Service{
		Registry:  reg,
		Sampler:   smp,
		Checker:   constraint.NewChecker(reg),
		Evaluator: cost.NewEvaluator(reg).WithTolerance(smp.Config().Tol()),
		cfg:       cfg,
		sink:      o.sink,
		log:       o.log,
	}, nil
}

// ExportConfig returns the export settings.
func (s *Service) ExportConfig() config.ExportConfig { return s.cfg.Export }

// SampleResult is a labelled batch with its cost summary.
type SampleResult struct {
	Table   export.Table
	Batch   *sampler.Batch
	Summary report.Summary
}

// Sample draws n allocations. A partial result is returned with the error
// when the sampler gives up.
func (s *Service) Sample(ctx context.Context, n int) (*SampleResult, error) {
	b, err := s.Registry.Bounds()
	if err != nil {
		return nil, err
	}
	batch, err := s.Sampler.GenerateMany(ctx, n)
	res := &SampleResult{Batch: batch}
	if batch != nil {
		res.Table = export.FromBatch(batch, b.SourceNames, b.ConsumerNames)
		if batch.Len() > 0 {
			sum, serr := report.Summarize(batch.Costs)
			if serr != nil {
				return res, serr
			}
			res.Summary = sum
		}
	}
	if err != nil {
		s.log.Errorf("sampling failed: %v", err)
		return res, err
	}
	s.log.Infof("sampled %d allocations: %s", batch.Len(), res.Summary)
	return res, nil
}

// WriteSamples exports the result in the configured format.
func (s *Service) WriteSamples(w io.Writer, res *SampleResult, format string) error {
	if format == "" {
		format = s.cfg.Export.Format
	}
	switch format {
	case "json":
		return export.WriteJSON(w, res.Table)
	case "csv":
		return export.WriteCSV(w, res.Table)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// WriteHistogram renders the cost histogram of the result as HTML.
func (s *Service) WriteHistogram(w io.Writer, res *SampleResult) error {
	buckets, err := report.Histogram(res.Batch.Costs, s.cfg.Export.Bins)
	if err != nil {
		return err
	}
	return export.WriteHistogramHTML(w, fmt.Sprintf("Allocation cost (run %s)", res.Batch.RunID), buckets)
}

// CheckResult reports the integrity and cost of a candidate allocation.
type CheckResult struct {
	Allocation allocation.Allocation
	Cost       float64
}

// Check parses raw, runs the integrity check and computes the cost.
func (s *Service) Check(raw any, tol float64) (CheckResult, error) {
	a, err := s.Checker.Parse(raw)
	if err != nil {
		return CheckResult{}, err
	}
	if err := s.Checker.CheckIntegrity(a, tol); err != nil {
		return CheckResult{Allocation: a}, err
	}
	c, err := s.Evaluator.Cost(a, false)
	if err != nil {
		return CheckResult{Allocation: a}, err
	}
	return CheckResult{Allocation: a, Cost: c}, nil
}

// Optimize returns the minimum-cost allocation.
func (s *Service) Optimize() (optimize.Result, error) {
	b, err := s.Registry.Bounds()
	if err != nil {
		return optimize.Result{}, err
	}
	return optimize.Solve(b)
}

// ServeMetrics exposes Prometheus metrics until ctx is cancelled. It returns
// immediately when no prometheus sink or listen address is configured.
func (s *Service) ServeMetrics(ctx context.Context) {
	if s.cfg.Metrics.ListenAddr == "" || !s.cfg.Metrics.HasSink("prometheus") {
		return
	}
	go func() {
		if err := metrics.StartPromServer(ctx, s.cfg.Metrics.ListenAddr); err != nil {
			s.log.Errorf("prom server: %v", err)
		}
	}()
}

// Close releases resources held by the metrics sink.
func (s *Service) Close() error {
	closeSink(s.sink)
	return nil
}

func closeSink(sink coremetrics.Sink) {
	switch v := sink.(type) {
	case *coremetrics.MultiSink:
		for _, inner := range v.Sinks {
			closeSink(inner)
		}
	case interface{ Close() }:
		v.Close()
	}
}
