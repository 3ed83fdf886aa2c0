// Package chart renders the averaged line scan report for human inspection.
// It is strictly a consumer of the core report; nothing here feeds back into
// the pipeline.
package chart

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/ebsd-data/linescan.report/internal/linescan"
)

// RenderPNG writes a PNG chart of the report: one thin line per scan, the
// mean trace on top, the recovery threshold as a horizontal line, and the
// recovery point as a vertical line (both only when defined).
func RenderPNG(rep *linescan.Report, path string) error {
	p := plot.New()
	p.Title.Text = "Averaged Line Scan"
	p.X.Label.Text = "Distance"
	p.Y.Label.Text = "KAM"

	colors := generateColors(len(rep.Table.Scans))
	for i, col := range rep.Table.Scans {
		pts := cellXYs(rep.Table.Axis, col.Cells)
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("scan line %s: %w", col.Label, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(0.5)
		p.Add(line)
		p.Legend.Add(col.Label, line)
	}

	meanPts := cellXYs(rep.Table.Axis, rep.Table.Mean)
	if len(meanPts) > 0 {
		meanLine, err := plotter.NewLine(meanPts)
		if err != nil {
			return fmt.Errorf("mean line: %w", err)
		}
		meanLine.Color = color.Black
		meanLine.Width = vg.Points(2)
		p.Add(meanLine)
		p.Legend.Add("mean", meanLine)
	}

	if th := rep.Deformation.Threshold; th != nil && rep.Table.Axis.Len() > 0 {
		axis := rep.Table.Axis
		thLine, err := plotter.NewLine(plotter.XYs{
			{X: axis.Distance(0), Y: *th},
			{X: axis.Distance(axis.Len() - 1), Y: *th},
		})
		if err != nil {
			return fmt.Errorf("threshold line: %w", err)
		}
		thLine.Color = color.RGBA{R: 200, A: 255}
		thLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(thLine)
		p.Legend.Add("threshold", thLine)
	}

	if rec := rep.Deformation.Recovery; rec != nil {
		marker, err := plotter.NewScatter(plotter.XYs{{X: *rec, Y: recoveryY(rep)}})
		if err != nil {
			return fmt.Errorf("recovery marker: %w", err)
		}
		marker.GlyphStyle.Shape = draw.CircleGlyph{}
		marker.GlyphStyle.Radius = vg.Points(3)
		marker.GlyphStyle.Color = color.RGBA{R: 200, A: 255}
		p.Add(marker)
		p.Legend.Add("recovery", marker)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}

// cellXYs converts an aligned column to XY points, skipping absent cells so
// gaps in a scan stay gaps instead of plotting as zero.
func cellXYs(axis linescan.Axis, cells []linescan.Cell) plotter.XYs {
	pts := make(plotter.XYs, 0, len(cells))
	for i, c := range cells {
		if !c.Present {
			continue
		}
		pts = append(pts, plotter.XY{X: axis.Distance(i), Y: c.Value})
	}
	return pts
}

// recoveryY finds the mean value at the recovery distance for the marker.
func recoveryY(rep *linescan.Report) float64 {
	rec := *rep.Deformation.Recovery
	for _, p := range rep.Table.Trace() {
		if p.Present && p.Distance == rec {
			return p.Mean
		}
	}
	return 0
}

// generateColors creates a palette of distinct colors for scan lines.
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64

	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
