package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/kilianp07/energyalloc/core/allocation"
	"github.com/kilianp07/energyalloc/core/sampler"
)

// Table is a batch of allocations labelled with the names of its rows and columns.
type Table struct {
	RunID       string
	Sources     []string
	Consumers   []string
	Allocations []allocation.Allocation
	Costs       []float64
}

// FromBatch labels a sampler batch with source and consumer names in registry order.
func FromBatch(b *sampler.Batch, sources, consumers []string) Table {
	return Table{
		RunID:       b.RunID,
		Sources:     sources,
		Consumers:   consumers,
		Allocations: b.Allocations,
		Costs:       b.Costs,
	}
}

// Record is the JSON form of one sampled allocation.
type Record struct {
	RunID      string                `json:"run_id"`
	Index      int                   `json:"index"`
	Allocation allocation.Allocation `json:"allocation"`
	Cost       float64               `json:"cost"`
}

func (t Table) check() error {
	if len(t.Allocations) != len(t.Costs) {
		return fmt.Errorf("export: %d allocations but %d costs", len(t.Allocations), len(t.Costs))
	}
	return nil
}

// WriteJSON writes the table to w as a JSON array of records.
func WriteJSON(w io.Writer, t Table) error {
	if err := t.check(); err != nil {
		return err
	}
	recs := make([]Record, len(t.Allocations))
	for i, a := range t.Allocations {
		recs[i] = Record{RunID: t.RunID, Index: i, Allocation: a, Cost: t.Costs[i]}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}

// WriteCSV writes one row per allocation with a column per source/consumer pair.
func WriteCSV(w io.Writer, t Table) error {
	if err := t.check(); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	header := []string{"run_id", "index"}
	for _, s := range t.Sources {
		for _, c := range t.Consumers {
			header = append(header, s+"->"+c)
		}
	}
	header = append(header, "cost")
	if err := cw.Write(header); err != nil {
		return err
	}
	width := len(t.Sources) * len(t.Consumers)
	for i, a := range t.Allocations {
		flows := a.Flatten()
		if len(flows) != width {
			return fmt.Errorf("export: allocation %d has %d entries, want %d: %w", i, len(flows), width, allocation.ErrInvalidShape)
		}
		rec := make([]string, 0, len(header))
		rec = append(rec, t.RunID, strconv.Itoa(i))
		for _, f := range flows {
			rec = append(rec, strconv.FormatFloat(f, 'f', -1, 64))
		}
		rec = append(rec, strconv.FormatFloat(t.Costs[i], 'f', -1, 64))
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
