// Package report summarises the cost distribution of a sampled batch.
package report

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrNoSamples is returned when there is nothing to summarise.
var ErrNoSamples = errors.New("no samples")

// Summary describes a cost distribution.
type Summary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	P05    float64 `json:"p05"`
	P50    float64 `json:"p50"`
	P95    float64 `json:"p95"`
}

func (s Summary) String() string {
	return fmt.Sprintf("n=%d min=%.4f p05=%.4f p50=%.4f mean=%.4f p95=%.4f max=%.4f sd=%.4f",
		s.Count, s.Min, s.P05, s.P50, s.Mean, s.P95, s.Max, s.StdDev)
}

// Summarize computes descriptive statistics over costs. The input is not modified.
func Summarize(costs []float64) (Summary, error) {
	if len(costs) == 0 {
		return Summary{}, ErrNoSamples
	}
	sorted := append([]float64(nil), costs...)
	sort.Float64s(sorted)

	s := Summary{
		Count: len(sorted),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Mean:  stat.Mean(sorted, nil),
		P05:   stat.Quantile(0.05, stat.Empirical, sorted, nil),
		P50:   stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P95:   stat.Quantile(0.95, stat.Empirical, sorted, nil),
	}
	// Sample standard deviation is undefined for a single value.
	if len(sorted) > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	return s, nil
}

// Bucket is one histogram bin covering [Lo, Hi).
type Bucket struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// Histogram splits the range of costs into bins equal-width buckets. The
// maximum falls into the last bucket. When every cost is identical a single
// bucket is returned.
func Histogram(costs []float64, bins int) ([]Bucket, error) {
	if len(costs) == 0 {
		return nil, ErrNoSamples
	}
	if bins <= 0 {
		return nil, fmt.Errorf("bins must be positive, got %d", bins)
	}
	sorted := append([]float64(nil), costs...)
	sort.Float64s(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		return []Bucket{{Lo: lo, Hi: hi, Count: len(sorted)}}, nil
	}

	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	// stat.Histogram uses half-open bins; widen the last edge so hi is counted.
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)

	out := make([]Bucket, bins)
	for i := range out {
		out[i] = Bucket{Lo: dividers[i], Hi: dividers[i+1], Count: int(counts[i])}
	}
	out[bins-1].Hi = hi
	return out, nil
}
