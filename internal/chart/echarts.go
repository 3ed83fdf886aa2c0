package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ebsd-data/linescan.report/internal/linescan"
)

// RenderHTML writes a self-contained interactive HTML chart of the report
// using go-echarts: per-scan series, the mean series, and a constant
// threshold series when the threshold is defined. Absent cells become gaps,
// not zeros.
func RenderHTML(rep *linescan.Report, w io.Writer) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Line Scan Averager",
			Width:     "1200px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Averaged Line Scan",
			Subtitle: subtitle(rep),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Distance", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "KAM", NameLocation: "middle", NameGap: 30}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	xLabels := make([]string, rep.Table.Axis.Len())
	for i := range xLabels {
		xLabels[i] = fmt.Sprintf("%.10g", rep.Table.Axis.Distance(i))
	}
	line.SetXAxis(xLabels)

	for _, col := range rep.Table.Scans {
		line.AddSeries(col.Label, cellSeries(col.Cells))
	}
	line.AddSeries("mean", cellSeries(rep.Table.Mean))

	if th := rep.Deformation.Threshold; th != nil {
		series := make([]opts.LineData, rep.Table.Axis.Len())
		for i := range series {
			series[i] = opts.LineData{Value: *th}
		}
		line.AddSeries("threshold", series)
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render html chart: %w", err)
	}
	return nil
}

// cellSeries converts aligned cells to line data, with echarts' "-" gap
// marker for absent cells.
func cellSeries(cells []linescan.Cell) []opts.LineData {
	out := make([]opts.LineData, len(cells))
	for i, c := range cells {
		if c.Present {
			out[i] = opts.LineData{Value: c.Value}
		} else {
			out[i] = opts.LineData{Value: "-"}
		}
	}
	return out
}

// subtitle summarises the run statistics, with undefined values shown
// explicitly.
func subtitle(rep *linescan.Report) string {
	return fmt.Sprintf("scans=%d points=%d baseline_mean=%s baseline_std=%s recovery=%s",
		len(rep.Table.Scans), rep.Table.Axis.Len(),
		formatOptional(rep.Deformation.BaselineMean),
		formatOptional(rep.Deformation.BaselineStd),
		formatOptional(rep.Deformation.Recovery))
}

// formatOptional renders a possibly-undefined scalar.
func formatOptional(v *float64) string {
	if v == nil {
		return "undefined"
	}
	return fmt.Sprintf("%.6g", *v)
}
