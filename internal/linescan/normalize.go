package linescan

import "fmt"

// Normalize cleans one raw scan onto the quantization grid:
//
//  1. rows whose distance cell is missing or non-numeric are dropped
//  2. rows whose value cell is missing are dropped
//  3. a value of exactly 0 is the instrument's "no measurement" sentinel and
//     becomes an absent value (the grid cell is still occupied)
//  4. distances snap to the nearest multiple of step
//  5. rows colliding on a grid cell keep the first occurrence in row order;
//     later rows at the same cell are discarded
//  6. points are sorted ascending by grid index
//
// Dropped and discarded rows are soft conditions reported as warnings, never
// errors. Normalize is idempotent: feeding a normalised scan back through
// produces the same scan.
func Normalize(raw RawScan, step float64) (NormalizedScan, []Warning) {
	var (
		nonNumeric int
		missing    int
		sentinels  int
		collisions int
	)

	seen := make(map[int64]bool, len(raw.Rows))
	pts := make([]GridPoint, 0, len(raw.Rows))
	for _, row := range raw.Rows {
		if row.Distance == nil {
			nonNumeric++
			continue
		}
		if row.Value == nil {
			missing++
			continue
		}
		idx := quantize(*row.Distance, step)
		if seen[idx] {
			collisions++
			continue
		}
		seen[idx] = true

		p := GridPoint{Index: idx}
		if *row.Value == 0 {
			sentinels++
		} else {
			p.Value = *row.Value
			p.Present = true
		}
		pts = append(pts, p)
	}
	sortPoints(pts)

	var warnings []Warning
	warn := func(format string, args ...interface{}) {
		warnings = append(warnings, Warning{Scan: raw.Label, Message: fmt.Sprintf(format, args...)})
	}
	if nonNumeric > 0 {
		warn("dropped %d rows with missing or non-numeric distance", nonNumeric)
	}
	if missing > 0 {
		warn("dropped %d rows with missing value", missing)
	}
	if sentinels > 0 {
		warn("treated %d zero readings as absent", sentinels)
	}
	if collisions > 0 {
		warn("discarded %d rows colliding on an occupied grid cell", collisions)
	}

	return NormalizedScan{Label: raw.Label, Step: step, Points: pts}, warnings
}
