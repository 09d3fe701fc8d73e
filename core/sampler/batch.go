package sampler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/energyalloc/core/allocation"
	"github.com/kilianp07/energyalloc/core/cost"
	"github.com/kilianp07/energyalloc/core/metrics"
)

// maxPrealloc bounds the up-front allocation of a batch; larger batches grow
// as samples are accepted.
const maxPrealloc = 1024

// Batch holds the accepted allocations of a GenerateMany call and their costs.
// Allocations and Costs are parallel and may be shorter than Requested since
// duplicates are dropped rather than resampled.
type Batch struct {
	RunID       string
	Requested   int
	Allocations []allocation.Allocation
	Costs       []float64
	Duplicates  int
	Attempts    int
}

// Len returns the number of accepted allocations.
func (b *Batch) Len() int { return len(b.Allocations) }

// GenerateMany calls the single-solution sampler n times. On error the batch
// accumulated so far is returned together with the error.
func (s *Sampler) GenerateMany(ctx context.Context, n int) (*Batch, error) {
	batch := &Batch{RunID: uuid.NewString(), Requested: n}
	if n < 0 {
		return batch, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}
	b, err := s.bounds()
	if err != nil {
		return batch, err
	}
	if err := s.precheck(b); err != nil {
		s.recordBatch(batch, true, s.now())
		return batch, err
	}

	start := s.now()
	hint := min(n, maxPrealloc)
	batch.Allocations = make([]allocation.Allocation, 0, hint)
	batch.Costs = make([]float64, 0, hint)
	seen := make(map[allocation.Key]struct{}, hint)
	for i := 0; i < n; i++ {
		a, attempts, err := s.generate(ctx, b)
		batch.Attempts += attempts
		if err != nil {
			s.recordBatch(batch, true, start)
			return batch, fmt.Errorf("sample %d of %d: %w", i+1, n, err)
		}
		key := a.Key()
		if _, dup := seen[key]; dup {
			batch.Duplicates++
			s.log.Debugw("sampler: duplicate allocation dropped", map[string]any{
				"run_id": batch.RunID,
				"index":  i,
				"flows":  a.Flatten(),
			})
			continue
		}
		seen[key] = struct{}{}

		c, err := cost.Of(b, a)
		if err != nil {
			s.recordBatch(batch, true, start)
			return batch, err
		}
		batch.Allocations = append(batch.Allocations, a)
		batch.Costs = append(batch.Costs, c)
		s.recordSample(batch.RunID, batch.Len()-1, a, c, b.SourceNames, b.ConsumerNames)
	}

	s.log.Infof("sampler: run %s accepted %d/%d allocations (%d duplicates, %d attempts)",
		batch.RunID, batch.Len(), n, batch.Duplicates, batch.Attempts)
	s.recordBatch(batch, false, start)
	return batch, nil
}

func (s *Sampler) recordSample(runID string, idx int, a allocation.Allocation, c float64, sources, consumers []string) {
	rec, ok := s.sink.(metrics.SampleRecorder)
	if !ok {
		return
	}
	ev := metrics.SampleEvent{
		RunID:      runID,
		Index:      idx,
		Flows:      a.Flatten(),
		Cost:       c,
		Sources:    sources,
		Consumers:  consumers,
		SampleTime: s.now(),
	}
	if err := rec.RecordSample(ev); err != nil {
		s.log.Warnf("sampler: record sample: %v", err)
	}
}

func (s *Sampler) recordBatch(b *Batch, failed bool, start time.Time) {
	rec, ok := s.sink.(metrics.BatchRecorder)
	if !ok {
		return
	}
	now := s.now()
	ev := metrics.BatchEvent{
		RunID:      b.RunID,
		Requested:  b.Requested,
		Accepted:   b.Len(),
		Duplicates: b.Duplicates,
		Attempts:   b.Attempts,
		Failed:     failed,
		Duration:   now.Sub(start),
		Time:       now,
	}
	if err := rec.RecordBatch(ev); err != nil {
		s.log.Warnf("sampler: record batch: %v", err)
	}
}
