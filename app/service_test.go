package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/energyalloc/config"
	"github.com/kilianp07/energyalloc/core/constraint"
	coremetrics "github.com/kilianp07/energyalloc/core/metrics"
	"github.com/kilianp07/energyalloc/core/sampler"
	"github.com/kilianp07/energyalloc/infra/logger"
)

func testConfig() *config.Config {
	cfg := &config.Config{
		Sources: []config.SourceConfig{
			{Name: "Solar", Capacity: 100, CostPerUnit: 0.10},
			{Name: "Wind", Capacity: 150, CostPerUnit: 0.05},
		},
		Consumers: []config.ConsumerConfig{
			{Name: "A", Demand: 3},
			{Name: "B", Demand: 5},
		},
		Sampler: sampler.Config{Seed: 1},
	}
	cfg.SetDefaults()
	return cfg
}

func newService(t *testing.T, cfg *config.Config) *Service {
	t.Helper()
	svc, err := New(cfg, WithLogger(logger.NopLogger{}), WithSink(coremetrics.NopSink{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestServiceSample(t *testing.T) {
	svc := newService(t, testConfig())
	res, err := svc.Sample(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, 50, res.Batch.Len()+res.Batch.Duplicates)
	assert.Equal(t, res.Batch.Len(), res.Summary.Count)
	assert.Equal(t, []string{"Solar", "Wind"}, res.Table.Sources)
	assert.GreaterOrEqual(t, res.Summary.Min, 0.4-1e-9)

	var js, csv, html bytes.Buffer
	require.NoError(t, svc.WriteSamples(&js, res, ""))
	assert.True(t, strings.HasPrefix(js.String(), "["))
	require.NoError(t, svc.WriteSamples(&csv, res, "csv"))
	assert.True(t, strings.HasPrefix(csv.String(), "run_id,index,Solar->A"))
	assert.Error(t, svc.WriteSamples(&bytes.Buffer{}, res, "xml"))
	require.NoError(t, svc.WriteHistogram(&html, res))
	assert.Contains(t, html.String(), res.Batch.RunID)
}

func TestServiceSampleInfeasible(t *testing.T) {
	cfg := testConfig()
	cfg.Sources[0].Capacity = 1
	cfg.Sources[1].Capacity = 1
	cfg.Sampler.MaxAttempts = 20
	svc := newService(t, cfg)

	res, err := svc.Sample(context.Background(), 3)
	require.ErrorIs(t, err, sampler.ErrInfeasible)
	require.NotNil(t, res)
	assert.Zero(t, res.Batch.Len())
}

func TestServiceCheck(t *testing.T) {
	svc := newService(t, testConfig())

	res, err := svc.Check([]float64{1.5, 2, 1.5, 3}, constraint.DefaultTolerance)
	require.NoError(t, err)
	assert.InDelta(t, 0.575, res.Cost, 1e-12)

	_, err = svc.Check([][]float64{{1, 1}, {1, 1}}, constraint.DefaultTolerance)
	assert.ErrorIs(t, err, constraint.ErrDemandNotMet)
}

func TestServiceOptimize(t *testing.T) {
	svc := newService(t, testConfig())
	res, err := svc.Optimize()
	require.NoError(t, err)
	assert.InDelta(t, 0.4, res.Cost, 1e-9)
}

func TestNewErrors(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	cfg := testConfig()
	cfg.Consumers = append(cfg.Consumers, config.ConsumerConfig{Name: "A", Demand: 1})
	_, err = New(cfg, WithLogger(logger.NopLogger{}))
	assert.Error(t, err)
}
