package linescan

import (
	"math"
	"testing"
)

func TestAverageMeanIgnoresMissing(t *testing.T) {
	a := scanFromPoints("a", 0.2,
		GridPoint{Index: 0, Value: 1.0, Present: true},
		GridPoint{Index: 1, Value: 2.0, Present: true},
	)
	b := scanFromPoints("b", 0.2,
		GridPoint{Index: 0, Value: 3.0, Present: true},
		// no entry at index 1
		GridPoint{Index: 2, Value: 5.0, Present: true},
	)
	axis := Axis{Step: 0.2, Indices: []int64{0, 1, 2}}

	table := Average([]NormalizedScan{a, b}, axis)

	wantMean := []float64{2.0, 2.0, 5.0}
	for i, want := range wantMean {
		if !table.Mean[i].Present {
			t.Fatalf("mean at row %d should be present", i)
		}
		if math.Abs(table.Mean[i].Value-want) > 1e-12 {
			t.Errorf("mean[%d] = %g, want %g", i, table.Mean[i].Value, want)
		}
	}
}

func TestAverageAbsentWhenNoContributors(t *testing.T) {
	// Index 1 is occupied only by a sentinel cell: zero contributing scans,
	// so the mean is absent, not zero and not an error.
	a := scanFromPoints("a", 0.2,
		GridPoint{Index: 0, Value: 1.0, Present: true},
		GridPoint{Index: 1},
	)
	axis := Axis{Step: 0.2, Indices: []int64{0, 1}}

	table := Average([]NormalizedScan{a}, axis)

	if !table.Mean[0].Present {
		t.Error("mean at row 0 should be present")
	}
	if table.Mean[1].Present {
		t.Errorf("mean at row 1 should be absent, got %g", table.Mean[1].Value)
	}
}

func TestAverageRetainsAlignedColumns(t *testing.T) {
	a := scanFromPoints("scan_1", 0.2, GridPoint{Index: 1, Value: 4.0, Present: true})
	b := scanFromPoints("scan_2", 0.2, GridPoint{Index: 0, Value: 2.0, Present: true})
	axis := Axis{Step: 0.2, Indices: []int64{0, 1}}

	table := Average([]NormalizedScan{a, b}, axis)

	if len(table.Scans) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(table.Scans))
	}
	if table.Scans[0].Label != "scan_1" || table.Scans[1].Label != "scan_2" {
		t.Errorf("column order should follow input order: %q, %q", table.Scans[0].Label, table.Scans[1].Label)
	}
	// scan_1 has no entry at index 0, scan_2 none at index 1.
	if table.Scans[0].Cells[0].Present || !table.Scans[0].Cells[1].Present {
		t.Errorf("scan_1 column misaligned: %+v", table.Scans[0].Cells)
	}
	if !table.Scans[1].Cells[0].Present || table.Scans[1].Cells[1].Present {
		t.Errorf("scan_2 column misaligned: %+v", table.Scans[1].Cells)
	}
}

func TestTrace(t *testing.T) {
	a := scanFromPoints("a", 0.5, GridPoint{Index: 2, Value: 3.0, Present: true})
	axis := Axis{Step: 0.5, Indices: []int64{2, 4}}
	table := Average([]NormalizedScan{a}, axis)

	trace := table.Trace()
	if len(trace) != 2 {
		t.Fatalf("trace length = %d, want 2", len(trace))
	}
	if math.Abs(trace[0].Distance-1.0) > 1e-12 || !trace[0].Present || trace[0].Mean != 3.0 {
		t.Errorf("trace[0] = %+v", trace[0])
	}
	if trace[1].Present {
		t.Errorf("trace[1] should be absent: %+v", trace[1])
	}
}
