package linescan

import (
	"math"
	"testing"
)

func tracePoints(means ...float64) []TracePoint {
	// Build a trace at unit spacing; NaN marks an absent point.
	pts := make([]TracePoint, len(means))
	for i, m := range means {
		pts[i] = TracePoint{Distance: float64(i)}
		if !math.IsNaN(m) {
			pts[i].Mean = m
			pts[i].Present = true
		}
	}
	return pts
}

func TestAnalyzeDeformationEmptyTrace(t *testing.T) {
	d := AnalyzeDeformation(nil, 30)
	if d.BaselineMean != nil || d.BaselineStd != nil || d.Threshold != nil || d.Recovery != nil {
		t.Errorf("empty trace should leave everything undefined: %+v", d)
	}
}

func TestAnalyzeDeformationEmptyTail(t *testing.T) {
	// Every point inside the window is absent.
	nan := math.NaN()
	trace := tracePoints(1.0, 0.5, nan, nan, nan)

	d := AnalyzeDeformation(trace, 2)
	if d.TailPoints != 0 {
		t.Fatalf("tail points = %d, want 0", d.TailPoints)
	}
	if d.BaselineMean != nil || d.BaselineStd != nil || d.Threshold != nil || d.Recovery != nil {
		t.Errorf("empty tail should leave statistics undefined: %+v", d)
	}
}

func TestAnalyzeDeformationSingleTailPoint(t *testing.T) {
	nan := math.NaN()
	trace := tracePoints(1.0, 0.5, nan, 0.2)

	// Window 1 covers distances >= 2; only the point at distance 3 is present.
	d := AnalyzeDeformation(trace, 1)
	if d.TailPoints != 1 {
		t.Fatalf("tail points = %d, want 1", d.TailPoints)
	}
	if d.BaselineMean == nil || *d.BaselineMean != 0.2 {
		t.Errorf("mean should be defined for a single point: %+v", d.BaselineMean)
	}
	// Sample standard deviation needs N >= 2; std, threshold and recovery
	// stay undefined rather than being special-cased to 0.
	if d.BaselineStd != nil || d.Threshold != nil || d.Recovery != nil {
		t.Errorf("std/threshold/recovery should be undefined: %+v", d)
	}
}

func TestAnalyzeDeformationMonotonicRecovery(t *testing.T) {
	// Strictly decreasing toward a noisy constant tail. Tail (window 4,
	// distances >= 3): 0.10, 0.10, 0.12, 0.08, 0.10 -> mean 0.1,
	// std sqrt(0.0002) ~ 0.01414, threshold ~ 0.11414. The first point at or
	// below threshold is the 0.11 at distance 2.
	trace := tracePoints(1.0, 0.5, 0.11, 0.10, 0.10, 0.12, 0.08, 0.10)

	d := AnalyzeDeformation(trace, 4)
	if d.TailPoints != 5 {
		t.Fatalf("tail points = %d, want 5", d.TailPoints)
	}
	if d.BaselineMean == nil || math.Abs(*d.BaselineMean-0.1) > 1e-12 {
		t.Fatalf("baseline mean = %v, want 0.1", d.BaselineMean)
	}
	wantStd := math.Sqrt(0.0002)
	if d.BaselineStd == nil || math.Abs(*d.BaselineStd-wantStd) > 1e-9 {
		t.Fatalf("baseline std = %v, want %g", d.BaselineStd, wantStd)
	}
	if d.Threshold == nil || math.Abs(*d.Threshold-(0.1+wantStd)) > 1e-9 {
		t.Fatalf("threshold = %v, want %g", d.Threshold, 0.1+wantStd)
	}
	if d.Recovery == nil || *d.Recovery != 2 {
		t.Errorf("recovery = %v, want 2", d.Recovery)
	}
}

func TestAnalyzeDeformationNoRecovery(t *testing.T) {
	// All points sit above the threshold derived from the tail.
	trace := tracePoints(5.0, 4.0, 3.0, 2.0)

	d := AnalyzeDeformation(trace, 1)
	// Tail: 3.0, 2.0 -> mean 2.5, std ~0.707, threshold ~3.207. Points at
	// distances 2 and 3 qualify, so recovery is defined here; shrink the
	// threshold by using a flat high plateau instead.
	if d.Recovery == nil {
		t.Fatalf("sanity: expected a recovery point in the first trace")
	}

	rising := tracePoints(1.0, 2.0, 3.0, 4.0)
	d = AnalyzeDeformation(rising, 0)
	// Window 0: tail is only the final point; std undefined, so the
	// threshold and recovery are undefined too.
	if d.Threshold != nil || d.Recovery != nil {
		t.Errorf("threshold/recovery should be undefined: %+v", d)
	}
}

func TestAnalyzeDeformationConstantTail(t *testing.T) {
	trace := tracePoints(2.0, 0.05, 0.05, 0.05)

	d := AnalyzeDeformation(trace, 2)
	if d.BaselineStd == nil || *d.BaselineStd != 0 {
		t.Fatalf("constant tail should have zero std: %+v", d.BaselineStd)
	}
	// threshold == mean; recovery is the first point at or below it.
	if d.Recovery == nil || *d.Recovery != 1 {
		t.Errorf("recovery = %v, want 1", d.Recovery)
	}
}
