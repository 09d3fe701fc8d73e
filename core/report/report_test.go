package report

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	costs := []float64{0.5, 0.4, 0.8, 0.6, 0.7}
	s, err := Summarize(costs)
	require.NoError(t, err)

	assert.Equal(t, 5, s.Count)
	assert.Equal(t, 0.4, s.Min)
	assert.Equal(t, 0.8, s.Max)
	assert.InDelta(t, 0.6, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(0.025), s.StdDev, 1e-12)
	assert.Equal(t, 0.6, s.P50)
	assert.Equal(t, 0.4, s.P05)
	assert.Equal(t, 0.8, s.P95)
	// input untouched
	assert.Equal(t, []float64{0.5, 0.4, 0.8, 0.6, 0.7}, costs)
}

func TestSummarizeSingle(t *testing.T) {
	s, err := Summarize([]float64{0.575})
	require.NoError(t, err)
	assert.Equal(t, 0.575, s.Mean)
	assert.Zero(t, s.StdDev)
	assert.Equal(t, 0.575, s.P05)
	assert.Equal(t, 0.575, s.P95)
}

func TestSummarizeEmpty(t *testing.T) {
	_, err := Summarize(nil)
	assert.ErrorIs(t, err, ErrNoSamples)
}

func TestHistogram(t *testing.T) {
	tests := []struct {
		name   string
		costs  []float64
		bins   int
		counts []int
	}{
		{"even", []float64{0, 1, 2, 3}, 2, []int{2, 2}},
		{"max in last bin", []float64{0, 0.1, 1}, 4, []int{2, 0, 0, 1}},
		{"single value", []float64{0.4, 0.4, 0.4}, 5, []int{3}},
		{"one bin", []float64{3, 1, 2}, 1, []int{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buckets, err := Histogram(tt.costs, tt.bins)
			require.NoError(t, err)
			got := make([]int, len(buckets))
			total := 0
			for i, b := range buckets {
				got[i] = b.Count
				total += b.Count
			}
			assert.Equal(t, tt.counts, got)
			assert.Equal(t, len(tt.costs), total)
		})
	}
}

func TestHistogramEdges(t *testing.T) {
	buckets, err := Histogram([]float64{1, 3}, 4)
	require.NoError(t, err)
	require.Len(t, buckets, 4)
	assert.Equal(t, 1.0, buckets[0].Lo)
	assert.Equal(t, 1.5, buckets[0].Hi)
	assert.Equal(t, 3.0, buckets[3].Hi)
}

func TestHistogramErrors(t *testing.T) {
	_, err := Histogram(nil, 3)
	assert.ErrorIs(t, err, ErrNoSamples)
	_, err = Histogram([]float64{1}, 0)
	assert.Error(t, err)
}
