package linescan

import "gonum.org/v1/gonum/stat"

// Column is one scan's values aligned to the unified axis, absent where the
// scan had no entry at that axis point.
type Column struct {
	Label string
	Cells []Cell
}

// Table is the aligned output of a run: one row per axis point, one column
// per scan, plus a point-wise mean over present values only.
type Table struct {
	Axis  Axis
	Scans []Column
	Mean  []Cell
}

// TracePoint is one point of the averaged trace. Present is false at axis
// points where no scan contributed a value.
type TracePoint struct {
	Distance float64
	Mean     float64
	Present  bool
}

// Trace returns the averaged trace as an ordered (distance, mean) sequence.
func (t *Table) Trace() []TracePoint {
	out := make([]TracePoint, t.Axis.Len())
	for i := range out {
		out[i] = TracePoint{
			Distance: t.Axis.Distance(i),
			Mean:     t.Mean[i].Value,
			Present:  t.Mean[i].Present,
		}
	}
	return out
}

// Average reindexes every scan onto the unified axis and computes the
// arithmetic mean of present values at each point. Scans missing a point are
// excluded from that point's mean, not treated as zero; a point where no
// scan contributes yields an absent mean.
func Average(scans []NormalizedScan, axis Axis) Table {
	t := Table{
		Axis:  axis,
		Scans: make([]Column, len(scans)),
		Mean:  make([]Cell, axis.Len()),
	}

	lookups := make([]map[int64]Cell, len(scans))
	for i, s := range scans {
		m := make(map[int64]Cell, len(s.Points))
		for _, p := range s.Points {
			m[p.Index] = Cell{Value: p.Value, Present: p.Present}
		}
		lookups[i] = m
		t.Scans[i] = Column{Label: s.Label, Cells: make([]Cell, axis.Len())}
	}

	vals := make([]float64, 0, len(scans))
	for row, idx := range axis.Indices {
		vals = vals[:0]
		for i := range scans {
			cell := lookups[i][idx]
			t.Scans[i].Cells[row] = cell
			if cell.Present {
				vals = append(vals, cell.Value)
			}
		}
		if len(vals) > 0 {
			t.Mean[row] = Cell{Value: stat.Mean(vals, nil), Present: true}
		}
	}
	return t
}
