package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/energyalloc/core/allocation"
	"github.com/kilianp07/energyalloc/core/report"
	"github.com/kilianp07/energyalloc/core/sampler"
)

func sampleTable() Table {
	b := &sampler.Batch{
		RunID: "run-1",
		Allocations: []allocation.Allocation{
			allocation.MustFromMatrix([][]float64{{1.5, 2}, {1.5, 3}}),
			allocation.MustFromMatrix([][]float64{{3, 5}, {0, 0}}),
		},
		Costs: []float64{0.575, 0.8},
	}
	return FromBatch(b, []string{"Solar", "Wind"}, []string{"A", "B"})
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleTable()))

	var got []struct {
		RunID      string      `json:"run_id"`
		Index      int         `json:"index"`
		Allocation [][]float64 `json:"allocation"`
		Cost       float64     `json:"cost"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "run-1", got[0].RunID)
	assert.Equal(t, [][]float64{{1.5, 2}, {1.5, 3}}, got[0].Allocation)
	assert.Equal(t, 0.575, got[0].Cost)
	assert.Equal(t, 1, got[1].Index)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"run_id", "index", "Solar->A", "Solar->B", "Wind->A", "Wind->B", "cost"}, rows[0])
	assert.Equal(t, []string{"run-1", "0", "1.5", "2", "1.5", "3", "0.575"}, rows[1])
	assert.Equal(t, []string{"run-1", "1", "3", "5", "0", "0", "0.8"}, rows[2])
}

func TestWriteMismatchedTable(t *testing.T) {
	tbl := sampleTable()
	tbl.Costs = tbl.Costs[:1]
	assert.Error(t, WriteJSON(&bytes.Buffer{}, tbl))
	assert.Error(t, WriteCSV(&bytes.Buffer{}, tbl))
}

func TestWriteCSVShapeMismatch(t *testing.T) {
	tbl := sampleTable()
	tbl.Sources = []string{"Solar"}
	err := WriteCSV(&bytes.Buffer{}, tbl)
	assert.ErrorIs(t, err, allocation.ErrInvalidShape)
}

func TestWriteHistogramHTML(t *testing.T) {
	buckets, err := report.Histogram([]float64{0.4, 0.5, 0.6, 0.6}, 2)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteHistogramHTML(&buf, "Allocation cost", buckets))
	html := buf.String()
	assert.True(t, strings.Contains(html, "<html"))
	assert.Contains(t, html, "Allocation cost")
	assert.Contains(t, html, "0.400-0.500")

	assert.ErrorIs(t, WriteHistogramHTML(&bytes.Buffer{}, "empty", nil), report.ErrNoSamples)
}
