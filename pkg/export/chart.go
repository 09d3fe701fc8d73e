package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/energyalloc/core/report"
)

// WriteHistogramHTML renders the cost histogram as a standalone HTML bar chart.
func WriteHistogramHTML(w io.Writer, title string, buckets []report.Bucket) error {
	if len(buckets) == 0 {
		return report.ErrNoSamples
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Cost"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Samples"}),
	)

	xAxis := make([]string, len(buckets))
	data := make([]opts.BarData, len(buckets))
	for i, b := range buckets {
		xAxis[i] = bucketLabel(b)
		data[i] = opts.BarData{Value: b.Count}
	}
	bar.SetXAxis(xAxis).AddSeries("Allocations", data)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func bucketLabel(b report.Bucket) string {
	return strconv.FormatFloat(b.Lo, 'f', 3, 64) + "-" + strconv.FormatFloat(b.Hi, 'f', 3, 64)
}
