package linescan

import "gonum.org/v1/gonum/stat"

// Deformation holds the baseline statistics of the averaged trace and the
// recovery point derived from them. Nil fields are undefined: the baseline
// mean requires at least one tail point, the sample standard deviation at
// least two, the threshold both operands, and the recovery distance a
// defined threshold plus at least one qualifying point.
type Deformation struct {
	Window       float64
	TailPoints   int
	BaselineMean *float64
	BaselineStd  *float64
	Threshold    *float64
	Recovery     *float64
}

// AnalyzeDeformation derives baseline statistics from the trailing window of
// the averaged trace and locates the recovery point.
//
// The tail subset is every point whose distance lies within window of the
// trace's maximum distance; points with an absent mean are excluded from the
// statistic, not treated as zero. The baseline mean and standard deviation
// are the sample statistics (std divides by N-1) of the tail's present
// means. The recovery point is the smallest distance whose mean is present
// and at or below baseline mean + baseline std.
func AnalyzeDeformation(trace []TracePoint, window float64) Deformation {
	d := Deformation{Window: window}
	if len(trace) == 0 {
		return d
	}

	maxDist := trace[len(trace)-1].Distance
	cutoff := maxDist - window

	var tail []float64
	for _, p := range trace {
		if p.Present && p.Distance >= cutoff {
			tail = append(tail, p.Mean)
		}
	}
	d.TailPoints = len(tail)
	if len(tail) == 0 {
		return d
	}

	mean := stat.Mean(tail, nil)
	d.BaselineMean = &mean
	if len(tail) < 2 {
		return d
	}
	std := stat.StdDev(tail, nil)
	d.BaselineStd = &std

	threshold := mean + std
	d.Threshold = &threshold

	for _, p := range trace {
		if p.Present && p.Mean <= threshold {
			dist := p.Distance
			d.Recovery = &dist
			break
		}
	}
	return d
}
