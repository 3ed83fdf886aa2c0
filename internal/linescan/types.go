// Package linescan implements the core averaging pipeline for 1-D line scan
// traces: normalising raw (distance, value) tables onto a quantized grid,
// unifying the distance axes of multiple scans, computing a point-wise mean
// that ignores missing data, and deriving baseline and recovery statistics
// from the averaged trace.
//
// The package is pure: it performs no file or terminal I/O apart from the CSV
// table writer, and every entity is a value object built and consumed within
// one Run.
package linescan

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrMalformedInput indicates an input source with fewer than two usable
// columns. It aborts the whole run; there is no best-effort averaging over a
// mixed valid/invalid batch.
var ErrMalformedInput = errors.New("input has fewer than two columns")

// ErrNoValidData indicates that no scan contributed any usable point after
// cleaning, so there is nothing to average.
var ErrNoValidData = errors.New("no valid scan data")

// RawRow is one row of an input table before cleaning. A nil field means the
// cell was missing or could not be coerced to a number.
type RawRow struct {
	Distance *float64
	Value    *float64
}

// RawScan is the first two columns of one input source in original row
// order, labelled by its source. Extra columns have already been discarded
// by the loader.
type RawScan struct {
	Label string
	Rows  []RawRow
}

// GridPoint is one entry of a normalised scan. Index is the position on the
// quantization grid; the physical distance is Index times the step. Present
// is false when the reading at this grid cell was the zero sentinel, which
// the instrument emits for "no measurement" rather than a true zero value.
type GridPoint struct {
	Index   int64
	Value   float64
	Present bool
}

// NormalizedScan is a cleaned scan: unique grid indices in ascending order,
// values absent where the source row was the zero sentinel.
type NormalizedScan struct {
	Label  string
	Step   float64
	Points []GridPoint
}

// Len returns the number of grid cells occupied by the scan, including cells
// whose value is absent.
func (s NormalizedScan) Len() int { return len(s.Points) }

// MaxDistance returns the largest distance with a present value, or false if
// the scan has no present values.
func (s NormalizedScan) MaxDistance() (float64, bool) {
	for i := len(s.Points) - 1; i >= 0; i-- {
		if s.Points[i].Present {
			return float64(s.Points[i].Index) * s.Step, true
		}
	}
	return 0, false
}

// HasValues reports whether the scan carries at least one present value.
func (s NormalizedScan) HasValues() bool {
	_, ok := s.MaxDistance()
	return ok
}

// Axis is the unified distance axis: strictly ascending grid indices shared
// by all scans in a run.
type Axis struct {
	Step    float64
	Indices []int64
}

// Len returns the number of axis points.
func (a Axis) Len() int { return len(a.Indices) }

// Distance returns the physical distance of the i-th axis point.
func (a Axis) Distance(i int) float64 { return float64(a.Indices[i]) * a.Step }

// Distances returns the physical distance of every axis point in order.
func (a Axis) Distances() []float64 {
	out := make([]float64, len(a.Indices))
	for i := range a.Indices {
		out[i] = a.Distance(i)
	}
	return out
}

// Cell is one table entry. Present is false where the scan (or the mean) has
// no value at that axis point; the Value field is meaningless in that case.
type Cell struct {
	Value   float64
	Present bool
}

// Warning is a non-fatal condition observed during a run. Warnings are
// accumulated on the report and the run proceeds over whatever data remains.
type Warning struct {
	Scan    string
	Message string
}

func (w Warning) String() string {
	if w.Scan == "" {
		return w.Message
	}
	return fmt.Sprintf("%s: %s", w.Scan, w.Message)
}

// TrimPolicy selects how the unified axis is bounded.
type TrimPolicy int

const (
	// TrimNone keeps the full union of all scans' grid indices.
	TrimNone TrimPolicy = iota
	// TrimToAverageMax restricts the axis to distances at or below the
	// quantized average of the per-scan maximum distances. This avoids
	// averaging over tail ranges where only a minority of scans still have
	// data.
	TrimToAverageMax
)

func (p TrimPolicy) String() string {
	switch p {
	case TrimNone:
		return "none"
	case TrimToAverageMax:
		return "trim_to_average_max"
	default:
		return fmt.Sprintf("TrimPolicy(%d)", int(p))
	}
}

// ParseTrimPolicy converts a policy name (as used in config files and CLI
// flags) to a TrimPolicy.
func ParseTrimPolicy(s string) (TrimPolicy, error) {
	switch s {
	case "none":
		return TrimNone, nil
	case "trim_to_average_max", "average_max":
		return TrimToAverageMax, nil
	default:
		return TrimNone, fmt.Errorf("unknown trim policy %q", s)
	}
}

// quantize snaps a distance onto the grid, returning the index of the
// nearest multiple of step. Ties round half away from zero.
func quantize(x, step float64) int64 {
	return int64(math.Round(x / step))
}

// sortPoints orders grid points ascending by index. Indices are unique by
// construction so the order is total.
func sortPoints(pts []GridPoint) {
	sort.Slice(pts, func(i, j int) bool { return pts[i].Index < pts[j].Index })
}
