package linescan

import (
	"fmt"
	"sort"
)

// UnifyAxis merges the grid indices of all scans into one common axis. With
// TrimToAverageMax the axis is restricted to distances at or below the
// quantized average of the per-scan maximum present distances; the returned
// pointer carries that limit and is nil under TrimNone.
//
// Returns ErrNoValidData when the scan set is empty or, under
// TrimToAverageMax, when no scan has a determinable maximum distance.
func UnifyAxis(scans []NormalizedScan, policy TrimPolicy) (Axis, *float64, error) {
	if len(scans) == 0 {
		return Axis{}, nil, fmt.Errorf("unify axis: %w", ErrNoValidData)
	}
	step := scans[0].Step

	union := make(map[int64]bool)
	for _, s := range scans {
		for _, p := range s.Points {
			union[p.Index] = true
		}
	}

	var limit *float64
	if policy == TrimToAverageMax {
		var sum float64
		var n int
		for _, s := range scans {
			if max, ok := s.MaxDistance(); ok {
				sum += max
				n++
			}
		}
		if n == 0 {
			return Axis{}, nil, fmt.Errorf("unify axis: no scan has a determinable maximum distance: %w", ErrNoValidData)
		}
		limitIdx := quantize(sum/float64(n), step)
		limitDist := float64(limitIdx) * step
		limit = &limitDist
		for idx := range union {
			if idx > limitIdx {
				delete(union, idx)
			}
		}
	}

	indices := make([]int64, 0, len(union))
	for idx := range union {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	return Axis{Step: step, Indices: indices}, limit, nil
}
